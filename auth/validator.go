package auth

import (
	"unicode"

	"easychat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type RegisterRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=12,max=72"`
}

type ResetRequest struct {
	Email string `validate:"required,email"`
}

// ValidateLogin rejects syntactically bad credentials before any lookup.
// A malformed email maps to its own failure kind so the UI can show a
// field-level message.
func ValidateLogin(req LoginRequest) error {
	if err := validate.StructPartial(req, "Email"); err != nil {
		return errors.ErrMalformedEmail
	}
	if err := validate.Struct(req); err != nil {
		return errors.ErrInvalidCredentials
	}
	return nil
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.StructPartial(req, "Email"); err != nil {
		return errors.ErrMalformedEmail
	}
	if err := validate.Struct(req); err != nil {
		return errors.ErrInvalidPassword
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func ValidateReset(req ResetRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.ErrMalformedEmail
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
