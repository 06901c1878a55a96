package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessage_CarriesMetadata(t *testing.T) {
	event := NewCoursePublicationEvent("course-1", "Go 101", "user-1", true)

	msg, err := toMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, string(EventCoursePublished), msg.Metadata.Get("event_type"))
	assert.Equal(t, "learning-service", msg.Metadata.Get("source"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "course-1", data["course_id"])
	assert.Equal(t, true, data["published"])
}

func TestNewCoursePublicationEvent_Unpublished(t *testing.T) {
	event := NewCoursePublicationEvent("course-1", "Go 101", "user-1", false)
	assert.Equal(t, EventCourseUnpublished, event.Type)
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewCourseCompletedEvent("u", "c", "manual")
	b := NewCourseCompletedEvent("u", "c", "manual")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, pub.Publish(context.Background(), NewCourseDeletedEvent("c", "u", nil, 0)))
	require.NoError(t, pub.Publish(context.Background(), NewCourseCompletedEvent("u", "c", "manual")))

	assert.Len(t, pub.GetPublishedEvents(), 2)
	assert.Len(t, pub.EventsOfType(EventCourseDeleted), 1)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
}
