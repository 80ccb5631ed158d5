package runtime_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"easychat/contract"
	"easychat/domain/event"
	"easychat/mocks"
	"easychat/repositories"
	"easychat/runtime"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_Create_PersistsAndEmits(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockIMessageRepository(ctrl)
	orchestrator := runtime.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), runtime.NewRegistry(), repo, 4)

	var stored repositories.DiskMessage
	repo.EXPECT().
		StoreMessage(gomock.Any()).
		DoAndReturn(func(dm repositories.DiskMessage) error {
			stored = dm
			return nil
		}).
		Times(1)

	created, err := orchestrator.Create(context.Background(), contract.NewMessage{
		Author:    "alice@example.com",
		Body:      "hello",
		AvatarRef: "/images/profile_placeholder.png",
	})
	req.NoError(err)
	req.NotEqual(uuid.Nil, created.ID)
	req.False(created.CreatedAt.IsZero(), "the store assigns the timestamp")
	req.Equal(created.ID, stored.ID)
	req.Equal(created.CreatedAt, stored.At)
	req.Equal("alice@example.com", stored.Author)

	// the change batch for realtime delivery carries the created message
	select {
	case batch := <-orchestrator.Batches():
		req.Len(batch.Changes, 1)
		req.Equal(event.Added, batch.Changes[0].Kind)
		req.Equal(created.ID, batch.Changes[0].Message.ID)
	default:
		t.Fatal("expected a batch on the delivery channel")
	}
}

func TestOrchestrator_Create_StorageFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockIMessageRepository(ctrl)
	orchestrator := runtime.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), runtime.NewRegistry(), repo, 4)

	repo.EXPECT().StoreMessage(gomock.Any()).Return(context.DeadlineExceeded).Times(1)

	_, err := orchestrator.Create(context.Background(), contract.NewMessage{
		Author: "a", Body: "b",
	})
	req.Error(err)

	// nothing is emitted for a failed create
	select {
	case <-orchestrator.Batches():
		t.Fatal("no batch expected after a failed store")
	default:
	}
}

func TestOrchestrator_Create_ConcurrentPostsEmitInCreatedAtOrder(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockIMessageRepository(ctrl)
	repo.EXPECT().StoreMessage(gomock.Any()).Return(nil).AnyTimes()

	const posts = 32
	orchestrator := runtime.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), runtime.NewRegistry(), repo, posts)

	errs := make(chan error, posts)
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := orchestrator.Create(context.Background(), contract.NewMessage{
				Author: "alice@example.com",
				Body:   fmt.Sprintf("message %d", i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	var previous time.Time
	for i := 0; i < posts; i++ {
		select {
		case batch := <-orchestrator.Batches():
			req.Len(batch.Changes, 1)
			at := batch.Changes[0].Message.CreatedAt
			req.False(at.Before(previous), "delivery must follow CreatedAt order")
			previous = at
		default:
			t.Fatalf("expected %d batches on the delivery channel, got %d", posts, i)
		}
	}
}

func TestOrchestrator_History_MapsDiskMessages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockIMessageRepository(ctrl)
	orchestrator := runtime.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), runtime.NewRegistry(), repo, 4)

	id := uuid.New()
	at := time.Now().UTC()
	cursor := "cursor-1"
	repo.EXPECT().
		GetMessages(nil).
		Return([]repositories.DiskMessage{
			{ID: id, Author: "Alice", Body: "hello", At: at},
		}, &cursor, nil).
		Times(1)

	messages, next, err := orchestrator.History(nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(id, messages[0].ID)
	req.Equal("Alice", messages[0].Author)
	req.Equal("hello", messages[0].Body)
	req.Equal(&cursor, next)
}
