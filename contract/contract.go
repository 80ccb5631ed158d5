//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"easychat/domain"
	"easychat/domain/event"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives change batches from the realtime subscription.
type EventSink interface {
	Consume(ctx context.Context, batch event.Batch) error
}

// Disposer releases a previously acquired subscription.
// Implementations must be idempotent: calling it twice is safe.
type Disposer func()

// NewMessage is the payload of a create request. The store assigns the id
// and the timestamp.
type NewMessage struct {
	Author    string
	Body      string
	AvatarRef string
}

// MessageStore is the append-only message collection with realtime delivery.
type MessageStore interface {
	// Create appends a message and returns the generated id.
	Create(ctx context.Context, msg NewMessage) (domain.Message, error)
	// History reads persisted messages in CreatedAt order, newest page first
	// when paging backwards with the cursor.
	History(cursor *string) ([]domain.Message, *string, error)
	// Subscribe registers a sink for change batches and returns a disposer.
	// The owning component must invoke the disposer on teardown.
	Subscribe(sink EventSink) Disposer
}

// IdentityProvider owns the ambient session identity.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignOut()
	SendPasswordReset(ctx context.Context, email string) error
	// UpdateDisplayName is best-effort: callers log failures and move on.
	UpdateDisplayName(ctx context.Context, userID, name string) error
	// CurrentIdentity returns nil while signed out.
	CurrentIdentity() *domain.Identity
	// OnIdentityChanged invokes the callback on every transition
	// (signed-out to signed-in, signed-in to signed-out, identity replaced).
	OnIdentityChanged(callback func(identity *domain.Identity)) Disposer
}

// SecretStore resolves a named secret's current value at call time.
// No caching contract is implied.
type SecretStore interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Mail is one outbound email. To and Bcc may not both be empty.
type Mail struct {
	From    string
	To      []string
	Bcc     []string
	Subject string
	Text    string
	HTML    string
}

// Mailer dispatches a single email via an external transport.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// Navigator addresses UI surfaces by URL. Redirection is the only contract;
// Location reports the surface currently shown.
type Navigator interface {
	NavigateTo(url string, replace bool)
	Location() string
}

// Notice surfaces a transient user-facing message (snackbar equivalent).
type Notice interface {
	Show(message string)
}
