package domain

import "time"

// Event types
const (
	EventTypeTransferCompleted = "transfer.completed"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransferCompletedEvent builds the outbox event for a committed transaction.
func NewTransferCompletedEvent(id string, t *Transaction) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.ID,
		AggregateType: AggregateTypeTransaction,
		EventType:     EventTypeTransferCompleted,
		Payload: map[string]any{
			"transaction_id":      t.ID,
			"tracking_code":       t.TrackingCode,
			"sender_account_id":   t.SenderAccountID,
			"receiver_account_id": t.ReceiverAccountID,
			"amount":              t.Amount.StringFixed(MinorUnitDigits),
			"channel":             string(t.Channel),
			"event_at":            t.CreatedAt.Format(time.RFC3339Nano),
		},
		CreatedAt: t.CreatedAt,
	}
}
