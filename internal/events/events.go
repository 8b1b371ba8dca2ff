package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger event types.
const (
	GroupCreated   = "group.created"
	GroupDeleted   = "group.deleted"
	ExpenseCreated = "expense.created"
	ExpenseDeleted = "expense.deleted"
)

// LedgerEvent records a change to a group or an expense.
type LedgerEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	GroupID   int64     `json:"group_id"`
	ExpenseID int64     `json:"expense_id,omitempty"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with a fresh id and the current time.
func NewLedgerEvent(eventType string, groupID, expenseID int64, userID string) LedgerEvent {
	return LedgerEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		GroupID:   groupID,
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier publishes ledger events.
type Notifier interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close()
}

// DecodeEvent parses a message payload.
func DecodeEvent(payload []byte) (LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("could not decode event payload: %w", err)
	}
	if event.Type == "" {
		return event, fmt.Errorf("event %q has no type", event.ID)
	}
	return event, nil
}

// NoopPublisher discards events. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, LedgerEvent) error { return nil }

func (NoopPublisher) Close() {}
