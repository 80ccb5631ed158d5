package client

import (
	"context"
	"log/slog"
	"sync"

	"easychat/contract"
	"easychat/errors"
)

const msgMustSignIn = "You must sign-in first"

// Composer captures user input and submits new message records.
//
// The UI is optimistic: the input is cleared and the submit affordance
// disabled as soon as the create request is issued. A failed create is
// logged but the input text is not restored.
type Composer struct {
	log      *slog.Logger
	store    contract.MessageStore
	provider contract.IdentityProvider
	notice   contract.Notice

	mu    sync.Mutex
	input string
}

func NewComposer(log *slog.Logger, store contract.MessageStore,
	provider contract.IdentityProvider, notice contract.Notice) *Composer {
	return &Composer{log: log, store: store, provider: provider, notice: notice}
}

// SetInput records the current input text. Called on every keystroke or
// change event; SubmitEnabled reflects the new value immediately.
func (c *Composer) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// SubmitEnabled is true if and only if the input holds non-empty text.
func (c *Composer) SubmitEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input != ""
}

// Submit issues a create request for the current input.
//
// Preconditions: non-empty input (no trimming, the empty check only) and an
// active session. A signed-out submit surfaces the sign-in notice and does
// nothing else. The input is cleared before the create request is issued;
// a failed create is logged and does not restore it.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()

	if text == "" {
		return errors.ErrEmptyMessage
	}

	identity := c.provider.CurrentIdentity()
	if identity == nil {
		c.notice.Show(msgMustSignIn)
		return errors.ErrNotSignedIn
	}

	msg := contract.NewMessage{
		Author:    identity.Label(),
		Body:      text,
		AvatarRef: identity.Avatar(),
	}

	// Optimistic UI: clear first, regardless of the create outcome.
	c.mu.Lock()
	c.input = ""
	c.mu.Unlock()

	if _, err := c.store.Create(ctx, msg); err != nil {
		c.log.Error("Error adding message", "error", err)
	}
	return nil
}
