// Package event defines the change notifications delivered by the
// realtime message subscription.
package event

import "easychat/domain"

// ChangeKind tags one entry of a change batch.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Modified ChangeKind = "modified"
	Removed  ChangeKind = "removed"
)

// Change is a single entry of a batch: one message and what happened to it.
type Change struct {
	Kind    ChangeKind
	Message domain.Message
}

// Batch is the unit of delivery of the realtime subscription.
// Within one subscription, batches arrive in an order consistent with
// Message.CreatedAt.
type Batch struct {
	Changes []Change
}

// AddedBatch builds a batch of Added changes, the only kind this system emits.
func AddedBatch(messages ...domain.Message) Batch {
	changes := make([]Change, 0, len(messages))
	for _, m := range messages {
		changes = append(changes, Change{Kind: Added, Message: m})
	}
	return Batch{Changes: changes}
}
