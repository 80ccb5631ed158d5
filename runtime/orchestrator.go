package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"easychat/contract"
	"easychat/domain"
	"easychat/domain/event"
	"easychat/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Orchestrator is the message store: it persists creations, then hands the
// resulting change batch to the fanout worker for realtime delivery.
// It implements contract.MessageStore.
type Orchestrator struct {
	log               *slog.Logger
	registry          *Registry
	messageRepository repositories.IMessageRepository
	batches           chan event.Batch

	// createMu serializes timestamp assignment, persist and emit so the
	// delivery channel carries batches in CreatedAt order.
	createMu sync.Mutex
}

func NewOrchestrator(log *slog.Logger, registry *Registry,
	messageRepository repositories.IMessageRepository, bufferSize int) *Orchestrator {
	return &Orchestrator{
		log:               log,
		registry:          registry,
		messageRepository: messageRepository,
		batches:           make(chan event.Batch, bufferSize),
	}
}

// Batches exposes the delivery channel for the fanout worker.
func (o *Orchestrator) Batches() chan event.Batch {
	return o.batches
}

// Registry exposes the subscriber registry for the fanout worker.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Create assigns an id and a timestamp, persists the message, and emits an
// "added" change. Creates are serialized so concurrent posts reach the
// delivery channel in the order their timestamps were taken. The emit is
// non-blocking: if the delivery buffer is full the change is dropped for
// realtime consumers, who still see it via History.
func (o *Orchestrator) Create(ctx context.Context, msg contract.NewMessage) (domain.Message, error) {
	o.createMu.Lock()
	defer o.createMu.Unlock()

	created := domain.Message{
		ID:        uuid.New(),
		Author:    msg.Author,
		Body:      msg.Body,
		AvatarRef: msg.AvatarRef,
		CreatedAt: time.Now().UTC(),
	}
	err := o.messageRepository.StoreMessage(repositories.DiskMessage{
		ID:        created.ID,
		Author:    created.Author,
		Body:      created.Body,
		AvatarRef: created.AvatarRef,
		At:        created.CreatedAt,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("store message: %w", err)
	}

	select {
	case o.batches <- event.AddedBatch(created):
	default:
		o.log.Warn("Batch channel full, dropping realtime notification",
			"message_id", created.ID)
	}
	return created, nil
}

// History reads a page of persisted messages in CreatedAt order.
func (o *Orchestrator) History(cursor *string) ([]domain.Message, *string, error) {
	messages, next, err := o.messageRepository.GetMessages(cursor)
	return fromDiskMessage(messages), next, err
}

func fromDiskMessage(messages []repositories.DiskMessage) []domain.Message {
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) domain.Message {
		return domain.Message{
			ID:        item.ID,
			Author:    item.Author,
			Body:      item.Body,
			AvatarRef: item.AvatarRef,
			CreatedAt: item.At,
		}
	})
}

// Subscribe registers a sink for realtime change batches.
func (o *Orchestrator) Subscribe(sink contract.EventSink) contract.Disposer {
	return o.registry.Subscribe(sink)
}
