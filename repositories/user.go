//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"easychat/errors"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	UpdateDisplayName(email, name string) error
	StoreResetToken(email, token string, expiresAt time.Time) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the domain-friendly representation of a user in the repository layer.
// Equivalent to DiskMessage for the account domain.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	AvatarRef    string    `json:"avatarRef,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type resetToken struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func userKey(email string) []byte {
	return []byte("user:" + email)
}

// CreateUser persists the user with the already hashed password.
// It returns the newly generated user ID.
func (u UserRepository) CreateUser(email, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	user := User{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(email)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})

	return newID, err
}

// GetUserByEmail retrieves a user from Badger.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var user User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return err // Will be handled as ErrInvalidCredentials or ErrUnknownAccount
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})

	if err != nil {
		return User{}, err
	}

	return user, nil
}

// UpdateDisplayName rewrites the stored user with the new display label.
// The write is a read-modify-write inside one transaction.
func (u UserRepository) UpdateDisplayName(email, name string) error {
	return u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return errors.ErrUnknownAccount
		}
		var user User
		if err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		}); err != nil {
			return err
		}
		user.DisplayName = name
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(email), data)
	})
}

// StoreResetToken persists a password-reset token with a badger TTL so
// expired tokens vanish without a cleanup job.
func (u UserRepository) StoreResetToken(email, token string, expiresAt time.Time) error {
	record := resetToken{Email: email, Token: token, ExpiresAt: expiresAt}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte("reset:"+token), data).
			WithTTL(time.Until(expiresAt))
		return txn.SetEntry(entry)
	})
}
