package dto

import (
	"time"

	"github.com/spec-kit/amelio/internal/domain"
)

// MediumPayload is the flat JSON form of every medium kind. Only the fields of Kind are used.
type MediumPayload struct {
	Kind     domain.MediumKind `json:"kind"`
	Page     int               `json:"page,omitempty"`
	Line     int               `json:"line,omitempty"`
	Time     string            `json:"time,omitempty"`
	URL      string            `json:"url,omitempty"`
	Question int               `json:"question,omitempty"`
	Answer   string            `json:"answer,omitempty"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type        domain.TicketType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    domain.Category   `json:"category"`
	CourseID    int64             `json:"course_id"`
	Medium      MediumPayload     `json:"medium"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.Status `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.Priority `json:"priority"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message string `json:"message"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          int64             `json:"id"`
	Type        domain.TicketType `json:"type"`
	Title       string            `json:"title"`
	Category    domain.Category   `json:"category"`
	Priority    domain.Priority   `json:"priority"`
	Status      domain.Status     `json:"status"`
	Forwarded   bool              `json:"forwarded"`
	CourseID    int64             `json:"course_id"`
	CourseName  string            `json:"course_name"`
	CreatorID   int64             `json:"creator_id"`
	CreatorName string            `json:"creator_name"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Medium      MediumPayload     `json:"medium"`
	NextStatus  []domain.Status   `json:"next_status"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreatedResponse carries the id of a created resource.
type CreatedResponse struct {
	ID int64 `json:"id"`
}
