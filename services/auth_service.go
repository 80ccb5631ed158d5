//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"easychat/auth"
	"easychat/contract"
	"easychat/domain"
	"easychat/errors"
	"easychat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type IAuthService interface {
	contract.IdentityProvider
	Login(ctx context.Context, email, password string) (domain.Identity, Token, error)
	Register(ctx context.Context, email, password string) (domain.Identity, Token, error)
}

type Token string

// AuthService is the identity provider: it authenticates users, owns the
// ambient session identity, and notifies listeners on every transition.
type AuthService struct {
	log               *slog.Logger
	userRepository    repositories.IUserRepository
	mailer            contract.Mailer
	senderAddr        string
	resetURL          string
	resetTokenTTL     time.Duration
	authTokenDuration time.Duration

	mu        sync.Mutex
	current   *domain.Identity
	listeners map[uint64]func(*domain.Identity)
	nextID    uint64
	limiters  map[string]*rate.Limiter
}

// loginRate bounds sign-in attempts per email. Exceeding it yields the
// rate-limited failure kind instead of a credential check.
var loginRate = rate.Limit(1.0 / 3.0) // one attempt every 3s sustained

const loginBurst = 5

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository,
	mailer contract.Mailer, senderAddr, resetURL string,
	resetTokenTTL, authTokenDuration time.Duration) *AuthService {
	return &AuthService{
		log:               log,
		userRepository:    repo,
		mailer:            mailer,
		senderAddr:        senderAddr,
		resetURL:          resetURL,
		resetTokenTTL:     resetTokenTTL,
		authTokenDuration: authTokenDuration,
		listeners:         make(map[uint64]func(*domain.Identity)),
		limiters:          make(map[string]*rate.Limiter),
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (domain.Identity, Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.Identity{}, "", err
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	userID, err := s.userRepository.CreateUser(email, hashedPassword)
	if err != nil {
		return domain.Identity{}, "", err // Propagates ErrUserAlreadyExists if email is taken
	}

	identity := domain.Identity{UserID: userID, Email: email}

	// 4. Generate the initial session token
	token, err := auth.GenerateToken(userID, email, "", s.authTokenDuration)
	if err != nil {
		return domain.Identity{}, "", errors.ErrTokenGeneration
	}

	s.setIdentity(&identity)
	return identity, Token(token), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Identity, Token, error) {
	// 1. Reject malformed input before touching storage
	if err := auth.ValidateLogin(auth.LoginRequest{Email: email, Password: password}); err != nil {
		return domain.Identity{}, "", err
	}

	// 2. Throttle repeated attempts per email
	if !s.limiter(email).Allow() {
		return domain.Identity{}, "", errors.ErrRateLimited
	}

	// 3. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.Identity{}, "", errors.ErrUnknownAccount
		}
		return domain.Identity{}, "", fmt.Errorf("%w: %v", errors.ErrUnreachable, err)
	}

	// 4. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.Identity{}, "", errors.ErrInvalidCredentials
	}

	identity := domain.Identity{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarRef:   user.AvatarRef,
	}

	// 5. Issue the session token
	token, err := auth.GenerateToken(user.ID, user.Email, user.DisplayName, s.authTokenDuration)
	if err != nil {
		return domain.Identity{}, "", errors.ErrTokenGeneration
	}

	s.setIdentity(&identity)
	return identity, Token(token), nil
}

// SignIn satisfies contract.IdentityProvider for callers that only need the
// identity, not the transport token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	identity, _, err := s.Login(ctx, email, password)
	return identity, err
}

func (s *AuthService) SignOut() {
	s.setIdentity(nil)
}

// SendPasswordReset stores a short-lived reset token and mails a reset link.
// The caller surfaces success or a generic failure; no account details leak.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	if err := auth.ValidateReset(auth.ResetRequest{Email: email}); err != nil {
		return err
	}
	if _, err := s.userRepository.GetUserByEmail(email); err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUnknownAccount
		}
		return fmt.Errorf("%w: %v", errors.ErrUnreachable, err)
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(s.resetTokenTTL)
	if err := s.userRepository.StoreResetToken(email, token, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	return s.mailer.Send(ctx, contract.Mail{
		From:    s.senderAddr,
		To:      []string{email},
		Subject: "EasyChat password reset",
		Text:    fmt.Sprintf("A password reset was requested for this address.\n\nReset link: %s\n\nThe link expires at %s.", link, expiresAt.UTC().Format(time.RFC1123)),
	})
}

// UpdateDisplayName patches the stored display label. Best-effort contract:
// callers log failures and move on.
func (s *AuthService) UpdateDisplayName(ctx context.Context, userID, name string) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil || current.UserID != userID {
		return errors.ErrNotSignedIn
	}
	if err := s.userRepository.UpdateDisplayName(current.Email, name); err != nil {
		return err
	}

	updated := *current
	updated.DisplayName = name
	// identity replaced transition
	s.setIdentity(&updated)
	return nil
}

func (s *AuthService) CurrentIdentity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

// OnIdentityChanged registers a transition listener and returns its disposer.
// Matching the ambient-session contract, the callback is invoked immediately
// with the current state so a late subscriber still observes the session.
func (s *AuthService) OnIdentityChanged(callback func(identity *domain.Identity)) contract.Disposer {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = callback
	current := s.current
	s.mu.Unlock()

	callback(copyIdentity(current))

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) setIdentity(identity *domain.Identity) {
	s.mu.Lock()
	s.current = identity
	listeners := make([]func(*domain.Identity), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(copyIdentity(identity))
	}
}

func (s *AuthService) limiter(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[email]
	if !ok {
		l = rate.NewLimiter(loginRate, loginBurst)
		s.limiters[email] = l
	}
	return l
}

func copyIdentity(identity *domain.Identity) *domain.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}
