package domain

import "fmt"

// Status is the lifecycle state of a ticket.
//
// A new ticket is Open. The assigned reviewer opening it moves it to InProgress.
// A reviewed ticket becomes Accepted or Refused; Refused is final.
// An Accepted ticket becomes Completed once the medium was updated; Completed is final.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusAccepted   Status = "accepted"
	StatusRefused    Status = "refused"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in lifecycle order.
var Statuses = [...]Status{StatusOpen, StatusInProgress, StatusAccepted, StatusRefused, StatusCompleted}

var statusTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusAccepted, StatusRefused},
	StatusAccepted:   {StatusCompleted},
	StatusRefused:    {},
	StatusCompleted:  {},
}

// ParseStatus converts the persisted form into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid status: %q", s)
	}
	return status, nil
}

func (s Status) String() string { return string(s) }

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(statusTransitions[s]) == 0
}

// Next returns the statuses reachable from s in one step.
func (s Status) Next() []Status {
	return append([]Status(nil), statusTransitions[s]...)
}

// CanChange reports whether current may move to target.
func CanChange(current, target Status) bool {
	for _, candidate := range statusTransitions[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// CanActivate reports whether actorID may move the ticket from Open to InProgress
// by opening it. Only the reviewer currently assigned through the course qualifies.
func CanActivate(ticket Ticket, course Course, actorID int64) bool {
	return ticket.Status == StatusOpen && course.Reviewer(ticket.Forwarded) == actorID
}
