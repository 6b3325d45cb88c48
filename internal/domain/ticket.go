package domain

import "fmt"

// TicketType names the course medium a ticket is reported against.
type TicketType string

const (
	TicketTypeCourseBook            TicketType = "course-book"
	TicketTypeReadingList           TicketType = "reading-list"
	TicketTypeInteractiveBook       TicketType = "interactive-book"
	TicketTypePracticeExam          TicketType = "practice-exam"
	TicketTypePracticeExamSolution  TicketType = "practice-exam-solution"
	TicketTypeVodcast               TicketType = "vodcast"
	TicketTypePodcast               TicketType = "podcast"
	TicketTypePresentation          TicketType = "presentation"
	TicketTypeLiveTutorialRecording TicketType = "live-tutorial-recording"
	TicketTypeOnlineTest            TicketType = "online-test"
)

var ticketTypeMedia = map[TicketType]MediumKind{
	TicketTypeCourseBook:            MediumKindText,
	TicketTypeReadingList:           MediumKindText,
	TicketTypePresentation:          MediumKindText,
	TicketTypeVodcast:               MediumKindRecording,
	TicketTypePodcast:               MediumKindRecording,
	TicketTypeLiveTutorialRecording: MediumKindRecording,
	TicketTypeInteractiveBook:       MediumKindInteractive,
	TicketTypePracticeExam:          MediumKindQuestionaire,
	TicketTypePracticeExamSolution:  MediumKindQuestionaire,
	TicketTypeOnlineTest:            MediumKindQuestionaire,
}

// TicketTypes lists every ticket type.
var TicketTypes = [...]TicketType{
	TicketTypeCourseBook,
	TicketTypeReadingList,
	TicketTypeInteractiveBook,
	TicketTypePracticeExam,
	TicketTypePracticeExamSolution,
	TicketTypeVodcast,
	TicketTypePodcast,
	TicketTypePresentation,
	TicketTypeLiveTutorialRecording,
	TicketTypeOnlineTest,
}

func ParseTicketType(s string) (TicketType, error) {
	ty := TicketType(s)
	if !ty.Valid() {
		return "", fmt.Errorf("invalid ticket type: %q", s)
	}
	return ty, nil
}

func (t TicketType) String() string { return string(t) }

func (t TicketType) Valid() bool {
	_, ok := ticketTypeMedia[t]
	return ok
}

// Medium returns the kind of medium attached to tickets of this type.
func (t TicketType) Medium() MediumKind {
	return ticketTypeMedia[t]
}

// Category groups tickets by topic.
type Category string

const (
	CategoryEditorial   Category = "editorial"
	CategoryContent     Category = "content"
	CategoryImprovement Category = "improvement"
	CategoryAddition    Category = "addition"
)

var categoryPriorities = map[Category]Priority{
	CategoryEditorial:   PriorityMedium,
	CategoryContent:     PriorityHigh,
	CategoryImprovement: PriorityLow,
	CategoryAddition:    PriorityLow,
}

// Categories lists every category.
var Categories = [...]Category{CategoryEditorial, CategoryContent, CategoryImprovement, CategoryAddition}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid category: %q", s)
	}
	return c, nil
}

func (c Category) String() string { return string(c) }

func (c Category) Valid() bool {
	_, ok := categoryPriorities[c]
	return ok
}

// Priority is the priority a new ticket of this category starts with.
func (c Category) Priority() Priority {
	return categoryPriorities[c]
}

// Priority orders tickets by urgency.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = [...]Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %q", s)
	}
	return p, nil
}

func (p Priority) String() string { return string(p) }

func (p Priority) Valid() bool {
	for _, candidate := range Priorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Ticket is a reported issue against the medium of a course.
type Ticket struct {
	ID          int64
	Type        TicketType
	Title       string
	Description string
	Category    Category
	Priority    Priority
	Status      Status
	CourseID    int64
	CreatorID   int64
	Forwarded   bool
}

// NewTicket is a ticket that is not stored yet. Priority and status are derived on creation.
type NewTicket struct {
	Type        TicketType
	Title       string
	Description string
	Category    Category
	CourseID    int64
	CreatorID   int64
}

// TicketWithNames carries the course and creator display names.
type TicketWithNames struct {
	Ticket
	CourseName  string
	CreatorName string
}

// TicketWithRels is the full detail view of a ticket.
type TicketWithRels struct {
	TicketWithNames
	Medium   Medium
	Comments []CommentWithName
}
