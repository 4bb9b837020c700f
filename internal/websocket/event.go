package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, posted, deleted...)
type EventType string

const (
	EventTypeCreated     EventType = "created"
	EventTypeUpdated     EventType = "updated"
	EventTypeDeleted     EventType = "deleted"
	EventTypePosted      EventType = "posted"
	EventTypeDeactivated EventType = "deactivated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeAccount      EntityType = "account"
	EntityTypeCategory     EntityType = "category"
	EntityTypeSubcategory  EntityType = "subcategory"
	EntityTypeJournalEntry EntityType = "journal_entry"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "account.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "account"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// AccountCreated creates an account.created event
func AccountCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAccount, payload)
}

// AccountUpdated creates an account.updated event
func AccountUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAccount, payload)
}

// AccountDeactivated creates an account.deactivated event
func AccountDeactivated(payload interface{}) Event {
	return NewEvent(EventTypeDeactivated, EntityTypeAccount, payload)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

// SubcategoryCreated creates a subcategory.created event
func SubcategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeSubcategory, payload)
}

// SubcategoryDeleted creates a subcategory.deleted event
func SubcategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSubcategory, payload)
}

// JournalEntryPosted creates a journal_entry.posted event
func JournalEntryPosted(payload interface{}) Event {
	return NewEvent(EventTypePosted, EntityTypeJournalEntry, payload)
}
