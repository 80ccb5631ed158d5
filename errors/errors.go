package errors

import "fmt"

var (
	ErrMalformedEmail     = fmt.Errorf("malformed email address")
	ErrUnknownAccount     = fmt.Errorf("unknown account")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrRateLimited        = fmt.Errorf("too many attempts")
	ErrUnreachable        = fmt.Errorf("service unreachable")
	ErrInvalidPassword    = fmt.Errorf("password does not meet requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrEmptyMessage       = fmt.Errorf("message body is empty")
	ErrNotSignedIn        = fmt.Errorf("no active session")
	ErrMissingSnapshot    = fmt.Errorf("no snapshot received")
	ErrSecretNotFound     = fmt.Errorf("secret not found")
)
