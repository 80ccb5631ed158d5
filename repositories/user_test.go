package repositories

import (
	"testing"
	"time"

	"easychat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	id, err := repository.CreateUser("alice@example.com", "$argon2id$fake$hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice@example.com", user.Email)
	req.Equal("$argon2id$fake$hash", user.PasswordHash)
	req.Empty(user.DisplayName)
}

func Test_Duplicate_Email_Is_Rejected(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.CreateUser("alice@example.com", "hash1")
	req.NoError(err)

	_, err = repository.CreateUser("alice@example.com", "hash2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Unknown_User_Lookup(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, badger.ErrKeyNotFound)
}

func Test_Update_Display_Name(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.CreateUser("alice@example.com", "hash")
	req.NoError(err)

	req.NoError(repository.UpdateDisplayName("alice@example.com", "alice@example.com"))

	user, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal("alice@example.com", user.DisplayName)
}

func Test_Update_Display_Name_Unknown_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	err := repository.UpdateDisplayName("nobody@example.com", "name")
	req.ErrorIs(err, errors.ErrUnknownAccount)
}

func Test_Store_Reset_Token(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.CreateUser("alice@example.com", "hash")
	req.NoError(err)

	err = repository.StoreResetToken("alice@example.com", "token-123", time.Now().Add(time.Hour))
	req.NoError(err)

	// the token record is readable before its TTL elapses
	err = db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("reset:token-123"))
		return err
	})
	req.NoError(err)
}
