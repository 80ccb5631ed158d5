// Package domain contains core concepts of the chat system.
// This file defines Message records and related rules.
// Messages are immutable and never updated or deleted once written.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat record in the append-only collection.
// Ordering is total under CreatedAt, ties broken by ID (stable but arbitrary).
type Message struct {
	ID        uuid.UUID // unique identifier, assigned by the store at creation
	Author    string
	Body      string
	AvatarRef string
	CreatedAt time.Time
}
