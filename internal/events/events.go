// Package events publishes domain events (stage changes, notifications) to an
// external broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeOpportunityStageChanged = "opportunity.stage_changed"
	TypeOpportunityCreated      = "opportunity.created"
	TypeOpportunityDeleted      = "opportunity.deleted"
	TypeNotification            = "notification"
)

// Event is the wire envelope for every published message
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Key        string          `json:"-"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent encodes payload into a fresh event. key groups related events on
// the same partition.
func NewEvent(eventType, key string, payload interface{}, at time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Key:        key,
		Payload:    raw,
	}, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// StageChanged is the payload of TypeOpportunityStageChanged
type StageChanged struct {
	OpportunityID uint       `json:"opportunityId"`
	Name          string     `json:"name"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	ClosingDate   *time.Time `json:"closingDate,omitempty"`
	ChangedBy     uint       `json:"changedBy,omitempty"`
}
