package domain

import "time"

// Comment is an append-only message on a ticket thread.
type Comment struct {
	ID        int64
	TicketID  int64
	CreatorID int64
	Timestamp time.Time
	Message   string
}

// CommentWithName carries the display name of the comment author.
type CommentWithName struct {
	Comment
	CreatorName string
}
