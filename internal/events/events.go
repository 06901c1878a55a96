package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a domain event on the bus
type EventType string

const (
	EventEnrollmentCompleted EventType = "enrollment.completed"

	EventCoursePublished   EventType = "course.published"
	EventCourseUnpublished EventType = "course.unpublished"
	EventCourseDeleted     EventType = "course.deleted"

	EventCourseCompleted EventType = "progress.course_completed"
)

const (
	eventSource  = "learning-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type EnrollmentCompletedEvent struct {
	PurchaseID  string    `json:"purchase_id"`
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	CompletedAt time.Time `json:"completed_at"`
	// Set when the enrollment was restored by reconciliation.
	Reconciled bool `json:"reconciled,omitempty"`
}

type CoursePublicationEvent struct {
	CourseID  string `json:"course_id"`
	Title     string `json:"title"`
	CreatorID string `json:"creator_id"`
	Published bool   `json:"published"`
}

type CourseDeletedEvent struct {
	CourseID     string   `json:"course_id"`
	CreatorID    string   `json:"creator_id"`
	LectureIDs   []string `json:"lecture_ids"`
	StudentCount int      `json:"student_count"`
}

type CourseCompletedEvent struct {
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	CompletedAt time.Time `json:"completed_at"`
	// "lecture_views" or "manual"
	Trigger string `json:"trigger"`
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewEnrollmentCompletedEvent(payload EnrollmentCompletedEvent) *Event {
	return newEvent(EventEnrollmentCompleted, payload)
}

func NewCoursePublicationEvent(courseID, title, creatorID string, published bool) *Event {
	eventType := EventCourseUnpublished
	if published {
		eventType = EventCoursePublished
	}
	return newEvent(eventType, CoursePublicationEvent{
		CourseID:  courseID,
		Title:     title,
		CreatorID: creatorID,
		Published: published,
	})
}

func NewCourseDeletedEvent(courseID, creatorID string, lectureIDs []string, studentCount int) *Event {
	return newEvent(EventCourseDeleted, CourseDeletedEvent{
		CourseID:     courseID,
		CreatorID:    creatorID,
		LectureIDs:   lectureIDs,
		StudentCount: studentCount,
	})
}

func NewCourseCompletedEvent(userID, courseID, trigger string) *Event {
	return newEvent(EventCourseCompleted, CourseCompletedEvent{
		UserID:      userID,
		CourseID:    courseID,
		CompletedAt: time.Now().UTC(),
		Trigger:     trigger,
	})
}
