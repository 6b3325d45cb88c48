package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/amelio/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
)

// Event represents a domain event emitted by services after the triggering write committed.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	ActorID   int64     `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID int64  `json:"comment_id"`
	WriterID  int64  `json:"writer_id"`
	Message   string `json:"message"`
}

func newEvent(eventType EventType, ticketID, actorID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NewTicketStatusChanged builds the event for a committed status transition.
func NewTicketStatusChanged(ticketID, actorID int64, from, to domain.Status) Event {
	return newEvent(EventTicketStatusChanged, ticketID, actorID, TicketStatusChangedPayload{OldStatus: from, NewStatus: to})
}

// NewTicketCommentAdded builds the event for a stored comment.
func NewTicketCommentAdded(ticketID int64, comment domain.Comment) Event {
	return newEvent(EventTicketCommentAdded, ticketID, comment.CreatorID, TicketCommentAddedPayload{
		CommentID: comment.ID,
		WriterID:  comment.CreatorID,
		Message:   comment.Message,
	})
}
