package repository

import (
	"context"

	"github.com/spec-kit/amelio/internal/domain"
)

// SearchCriteria is a conjunction of optional ticket filters. Nil fields impose no constraint.
type SearchCriteria struct {
	Title    *string
	CourseID *int64
	Category *domain.Category
	Priority *domain.Priority
	Status   *domain.Status
}

// Transactor runs fn inside one storage transaction carried by the context passed to fn.
// Repository calls made with that context join the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TicketRepository encapsulates ticket and medium persistence.
type TicketRepository interface {
	// Create stores the ticket and its medium atomically and returns the new id.
	Create(ctx context.Context, ticket domain.NewTicket, priority domain.Priority, medium domain.Medium) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Ticket, error)
	GetWithNames(ctx context.Context, id int64) (*domain.TicketWithNames, error)
	GetWithRels(ctx context.Context, id int64) (*domain.TicketWithRels, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListWithNames(ctx context.Context) ([]domain.TicketWithNames, error)
	ListByCreatorID(ctx context.Context, creatorID int64) ([]domain.TicketWithNames, error)
	ListByAssigneeID(ctx context.Context, assigneeID int64) ([]domain.TicketWithNames, error)
	Update(ctx context.Context, id int64, priority domain.Priority) error
	Forward(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.Status) error
	// TransitionStatus moves the ticket from one status to another and reports false,
	// without error, when the stored status is no longer from.
	TransitionStatus(ctx context.Context, id int64, from, to domain.Status) (bool, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]domain.TicketWithNames, error)
	IsCreator(ctx context.Context, id, userID int64) (bool, error)
	GetStatus(ctx context.Context, id int64) (domain.Status, error)
}

// CommentRepository appends comments to ticket threads.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.CommentWithName, error)
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByCode(ctx context.Context, code string) (*domain.User, error)
	FindTicketCreator(ctx context.Context, ticketID int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListNamesByRole(ctx context.Context, role domain.Role) ([]domain.UserName, error)
	// Activate stores the password hash, marks the user active and clears the invitation code.
	Activate(ctx context.Context, id int64, passwordHash string) error
	Count(ctx context.Context) (int64, error)
}

// CourseRepository defines persistence access for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Get(ctx context.Context, id int64) (*domain.Course, error)
	ListNames(ctx context.Context) ([]domain.CourseName, error)
	ListWithNames(ctx context.Context) ([]domain.CourseWithNames, error)
	// SetActive enables or disables a course. Disabled courses accept no new tickets.
	SetActive(ctx context.Context, id int64, active bool) error
}
