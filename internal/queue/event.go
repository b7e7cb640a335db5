// Package queue defines the messages exchanged over RabbitMQ and the
// consumer that reacts to them.
package queue

import "time"

// ContentChangedQueue carries one message per admin mutation.
const ContentChangedQueue = "content.changed"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ContentChangedEvent is published after an admin write commits.  Entity
// uses the cache namespace names (tournaments, cash-games, ...).
type ContentChangedEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        uint64    `json:"id,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}
