package client

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"easychat/contract"
	"easychat/domain"
	"easychat/errors"
	"easychat/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestComposer_SubmitEnabled(t *testing.T) {
	req := require.New(t)
	composer := NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), nil, nil, nil)

	req.False(composer.SubmitEnabled())
	composer.SetInput("hello")
	req.True(composer.SubmitEnabled())
	composer.SetInput("")
	req.False(composer.SubmitEnabled())
	composer.SetInput("   ")
	req.True(composer.SubmitEnabled(), "whitespace is not trimmed")
}

func TestComposer_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("should refuse an empty input without creating anything", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockMessageStore(ctrl)

		composer := NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), store, nil, nil)
		req.ErrorIs(composer.Submit(ctx), errors.ErrEmptyMessage)
	})

	t.Run("should require an active session", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockMessageStore(ctrl)
		provider := mocks.NewMockIdentityProvider(ctrl)
		notice := &fakeNotice{}

		provider.EXPECT().CurrentIdentity().Return(nil)

		composer := NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), store, provider, notice)
		composer.SetInput("hello")

		req.ErrorIs(composer.Submit(ctx), errors.ErrNotSignedIn)
		req.Equal([]string{msgMustSignIn}, notice.Shown())
		req.True(composer.SubmitEnabled(), "a refused submit keeps the input")
	})

	t.Run("should create the record with the session identity", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockMessageStore(ctrl)
		provider := mocks.NewMockIdentityProvider(ctrl)

		provider.EXPECT().CurrentIdentity().Return(&domain.Identity{
			UserID:      "user-1",
			Email:       "alice@example.com",
			DisplayName: "Alice",
			AvatarRef:   "/images/alice.png",
		})
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg contract.NewMessage) (domain.Message, error) {
				req.Equal("Alice", msg.Author)
				req.Equal("hello", msg.Body)
				req.Equal("/images/alice.png", msg.AvatarRef)
				return domain.Message{}, nil
			})

		composer := NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), store, provider, nil)
		composer.SetInput("hello")

		req.NoError(composer.Submit(ctx))
		req.False(composer.SubmitEnabled(), "the input is cleared on submit")
	})

	t.Run("should fall back to the email and placeholder avatar", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockMessageStore(ctrl)
		provider := mocks.NewMockIdentityProvider(ctrl)

		provider.EXPECT().CurrentIdentity().Return(&domain.Identity{
			UserID: "user-1",
			Email:  "alice@example.com",
		})
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg contract.NewMessage) (domain.Message, error) {
				req.Equal("alice@example.com", msg.Author)
				req.Equal(domain.AvatarPlaceholder, msg.AvatarRef)
				return domain.Message{}, nil
			})

		composer := NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), store, provider, nil)
		composer.SetInput("hello")
		req.NoError(composer.Submit(ctx))
	})

	t.Run("should clear the input even when the create fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockMessageStore(ctrl)
		provider := mocks.NewMockIdentityProvider(ctrl)

		provider.EXPECT().CurrentIdentity().Return(&domain.Identity{
			UserID: "user-1",
			Email:  "alice@example.com",
		})
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(domain.Message{}, fmt.Errorf("storage down"))

		composer := NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), store, provider, nil)
		composer.SetInput("hello")

		// Optimistic contract: the failure is logged, the caller sees success
		// and the input stays cleared.
		req.NoError(composer.Submit(ctx))
		req.False(composer.SubmitEnabled())
	})
}
