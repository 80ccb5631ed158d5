// Package client holds the user-facing components of the chat: session
// management, the message composer, and the realtime feed synchronizer.
// All of them are wired against contract interfaces and own their
// subscription handles, releasing them on Close.
package client

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"easychat/contract"
	"easychat/domain"
	"easychat/errors"
)

// Surfaces are the URLs of the UI pages the session manager redirects between.
type Surfaces struct {
	Login   string
	Chat    string
	Failure string
}

// Fixed user-facing messages per sign-in failure kind.
const (
	msgMalformedEmail = "The email address is badly formatted."
	msgUnknownAccount = "No account exists for this email address."
	msgWrongPassword  = "The password is incorrect."
	msgRateLimited    = "Too many attempts. Please try again later."
	msgUnreachable    = "The service is unreachable. Check your connection."
	msgOtherFailure   = "Sign-in failed. Please try again."
	msgResetSent      = "A password reset email has been sent."
	msgResetFailed    = "Could not send the reset email. Please try again."
)

// SessionManager tracks the current authenticated identity and reacts to
// sign-in and sign-out transitions by redirecting the UI.
type SessionManager struct {
	log          *slog.Logger
	provider     contract.IdentityProvider
	nav          contract.Navigator
	notice       contract.Notice
	surfaces     Surfaces
	failureDelay time.Duration

	mu      sync.Mutex
	dispose contract.Disposer

	// patched is lock-free: the provider invokes the identity callback
	// synchronously from OnIdentityChanged, while Start still holds mu.
	patched atomic.Bool
}

func NewSessionManager(log *slog.Logger, provider contract.IdentityProvider,
	nav contract.Navigator, notice contract.Notice, surfaces Surfaces,
	failureDelay time.Duration) *SessionManager {
	return &SessionManager{
		log:          log,
		provider:     provider,
		nav:          nav,
		notice:       notice,
		surfaces:     surfaces,
		failureDelay: failureDelay,
	}
}

// Start subscribes to identity transitions. The subscription handle is kept
// and released by Close.
func (s *SessionManager) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispose != nil {
		return
	}
	s.dispose = s.provider.OnIdentityChanged(s.onIdentityChanged)
}

// Close releases the identity subscription. Safe to call more than once.
func (s *SessionManager) Close() {
	s.mu.Lock()
	dispose := s.dispose
	s.dispose = nil
	s.mu.Unlock()
	if dispose != nil {
		dispose()
	}
}

// CurrentIdentity returns the ambient identity or nil while signed out.
func (s *SessionManager) CurrentIdentity() *domain.Identity {
	return s.provider.CurrentIdentity()
}

func (s *SessionManager) onIdentityChanged(identity *domain.Identity) {
	if identity == nil {
		s.nav.NavigateTo(s.surfaces.Login, false)
		return
	}

	// First time we observe a signed-in identity without a display label,
	// patch it with the email. Best-effort: a failure is logged, never
	// surfaced, and never retried.
	if identity.DisplayName == "" && identity.Email != "" && s.patched.CompareAndSwap(false, true) {
		go func(userID, email string) {
			if err := s.provider.UpdateDisplayName(context.Background(), userID, email); err != nil {
				s.log.Error("display name patch failed", "error", err)
			}
		}(identity.UserID, identity.Email)
	}

	if s.nav.Location() == s.surfaces.Login {
		s.nav.NavigateTo(s.surfaces.Chat, true)
	}
}

// Login submits the login form. On failure the mapped message is surfaced
// and, after the display delay, the UI navigates to the failure surface.
func (s *SessionManager) Login(ctx context.Context, email, password string) error {
	_, err := s.provider.SignIn(ctx, email, password)
	if err == nil {
		// the identity transition handles the redirect to the chat surface
		return nil
	}

	s.notice.Show(FailureMessage(err))
	time.AfterFunc(s.failureDelay, func() {
		s.nav.NavigateTo(s.surfaces.Failure, false)
	})
	return err
}

// ResetPassword requests a password-reset email and surfaces the outcome.
func (s *SessionManager) ResetPassword(ctx context.Context, email string) error {
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		s.log.Error("password reset failed", "error", err)
		s.notice.Show(msgResetFailed)
		return err
	}
	s.notice.Show(msgResetSent)
	return nil
}

// SignOut ends the session; the transition redirects to the login surface.
func (s *SessionManager) SignOut() {
	s.provider.SignOut()
}

// FailureMessage maps a sign-in failure to its fixed user-facing message.
func FailureMessage(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrMalformedEmail):
		return msgMalformedEmail
	case stderrors.Is(err, errors.ErrUnknownAccount):
		return msgUnknownAccount
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		return msgWrongPassword
	case stderrors.Is(err, errors.ErrRateLimited):
		return msgRateLimited
	case stderrors.Is(err, errors.ErrUnreachable):
		return msgUnreachable
	default:
		return msgOtherFailure
	}
}
