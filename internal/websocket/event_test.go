package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_TypeComposition(t *testing.T) {
	event := NewEvent(EventTypeCreated, EntityTypeAccount, nil)
	assert.Equal(t, "account.created", event.Type)
	assert.Equal(t, EntityTypeAccount, event.Entity)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEvent_ToJSON(t *testing.T) {
	event := JournalEntryPosted(map[string]any{"description": "Cash sale"})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "journal_entry.posted", decoded["type"])
	assert.Equal(t, "journal_entry", decoded["entity"])

	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Cash sale", payload["description"])
}

func TestEventConstructors(t *testing.T) {
	cases := []struct {
		event    Event
		expected string
	}{
		{AccountCreated(nil), "account.created"},
		{AccountUpdated(nil), "account.updated"},
		{AccountDeactivated(nil), "account.deactivated"},
		{CategoryCreated(nil), "category.created"},
		{CategoryDeleted(nil), "category.deleted"},
		{SubcategoryCreated(nil), "subcategory.created"},
		{SubcategoryDeleted(nil), "subcategory.deleted"},
		{JournalEntryPosted(nil), "journal_entry.posted"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, tc.event.Type)
	}
}
