package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType routing key of a domain event
type EventType string

const (
	EventBookingCreated     EventType = "booking.created"
	EventBookingCancelled   EventType = "booking.cancelled"
	EventBookingRescheduled EventType = "booking.rescheduled"
	EventHoldConsumed       EventType = "hold.consumed"
	EventPayRunCreated      EventType = "payrun.created"
)

// OutboxStatus delivery status of a stored event
type OutboxStatus string

const (
	OutboxNew       OutboxStatus = "new"
	OutboxPublished OutboxStatus = "published"
)

// Event domain event written to the outbox in the same transaction as the change
type Event struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	Type          EventType
	Payload       []byte
	OccurredAt    time.Time
}

// OutboxRecord stored event awaiting delivery
type OutboxRecord struct {
	Event
	Status      OutboxStatus
	Attempts    int
	LastError   *string
	PublishedAt *time.Time
}

// NewEvent marshals payload into a new event
func NewEvent(aggregateType, aggregateID string, eventType EventType, payload interface{}, now time.Time) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       body,
		OccurredAt:    now,
	}, nil
}

// BookingCreatedPayload body of booking.created
type BookingCreatedPayload struct {
	BookingID      int64     `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	ProviderID     int64     `json:"provider_id"`
	CustomerUserID int64     `json:"customer_user_id"`
	StartAt        time.Time `json:"start_at"`
	StaffIDs       []int64   `json:"staff_ids"`
}

// HoldConsumedPayload body of hold.consumed
type HoldConsumedPayload struct {
	HoldID    uuid.UUID `json:"hold_id"`
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
}

// BookingChangedPayload body of booking.cancelled and booking.rescheduled
type BookingChangedPayload struct {
	BookingID int64         `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	StartAt   time.Time     `json:"start_at"`
	ChangedBy int64         `json:"changed_by"`
}

// PayRunCreatedPayload body of payrun.created
type PayRunCreatedPayload struct {
	PayRunID   int64 `json:"pay_run_id"`
	ProviderID int64 `json:"provider_id"`
	ItemCount  int   `json:"item_count"`
}
