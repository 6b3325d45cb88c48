package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/events"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows: it checks roles and transitions, applies
// changes inside one transaction and publishes events once they are committed.
type TicketService struct {
	tx         repository.Transactor
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	courses    repository.CourseRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	locks      *ticketLocks
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	Transactor  repository.Transactor
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	CourseRepo  repository.CourseRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tx:         deps.Transactor,
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		courses:    deps.CourseRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		locks:      &ticketLocks{},
	}
}

// Create stores a new ticket together with its medium. The priority is derived from the category.
func (s *TicketService) Create(ctx context.Context, ticket domain.NewTicket, medium domain.Medium) (int64, error) {
	ticket.Title = strings.TrimSpace(ticket.Title)
	ticket.Description = strings.TrimSpace(ticket.Description)
	if err := validateNewTicket(ticket, medium); err != nil {
		return 0, err
	}

	var id int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		course, err := s.courses.Get(ctx, ticket.CourseID)
		if err != nil {
			return err
		}
		if !course.Active {
			return apperrors.NewValidationError("course is inactive", map[string]any{"course_id": course.ID})
		}
		id, err = s.tickets.Create(ctx, ticket, ticket.Category.Priority(), medium)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", id),
		zap.Int64("creator_id", ticket.CreatorID),
		zap.String("type", ticket.Type.String()),
	)
	return id, nil
}

func validateNewTicket(ticket domain.NewTicket, medium domain.Medium) error {
	details := map[string]any{}
	if ticket.Title == "" {
		details["title"] = "required"
	}
	if ticket.Description == "" {
		details["description"] = "required"
	}
	if !ticket.Type.Valid() {
		details["type"] = "invalid"
	}
	if !ticket.Category.Valid() {
		details["category"] = "invalid"
	}
	if ticket.CourseID <= 0 {
		details["course_id"] = "required"
	}
	if ticket.CreatorID <= 0 {
		details["creator_id"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket", details)
	}
	if err := domain.ValidateMedium(ticket.Type, medium); err != nil {
		return apperrors.NewValidationError("invalid medium", map[string]any{"medium": err.Error()})
	}
	return nil
}

// GetWithRels returns the full ticket view. When a tutor or author opens a ticket they
// are currently assigned to and it is still open, the ticket moves to in progress first
// and the creator is notified.
func (s *TicketService) GetWithRels(ctx context.Context, id, actorID int64, actorRole domain.Role) (*domain.TicketWithRels, error) {
	var (
		result    *domain.TicketWithRels
		activated bool
	)
	defer s.locks.lock(id)()
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if actorRole == domain.RoleTutor || actorRole == domain.RoleAuthor {
			var err error
			if activated, err = s.activate(ctx, id, actorID); err != nil {
				return err
			}
		}
		var err error
		result, err = s.tickets.GetWithRels(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if activated {
		s.publish(ctx, events.NewTicketStatusChanged(id, actorID, domain.StatusOpen, domain.StatusInProgress))
	}
	return result, nil
}

// Activate moves an open ticket to in progress when actorID is its assigned reviewer
// and reports whether it did. Repeated calls are harmless.
func (s *TicketService) Activate(ctx context.Context, id, actorID int64) (bool, error) {
	var activated bool
	defer s.locks.lock(id)()
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		activated, err = s.activate(ctx, id, actorID)
		return err
	})
	if err != nil {
		return false, err
	}
	if activated {
		s.publish(ctx, events.NewTicketStatusChanged(id, actorID, domain.StatusOpen, domain.StatusInProgress))
	}
	return activated, nil
}

// activate moves an open ticket to in progress when actorID is its assigned reviewer.
// It reports false instead of failing when the ticket is not open, the actor is not
// assigned, or another request activated it first.
func (s *TicketService) activate(ctx context.Context, id, actorID int64) (bool, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if ticket.Status != domain.StatusOpen {
		return false, nil
	}
	course, err := s.courses.Get(ctx, ticket.CourseID)
	if err != nil {
		return false, err
	}
	if !domain.CanActivate(*ticket, *course, actorID) {
		return false, nil
	}
	return s.tickets.TransitionStatus(ctx, id, domain.StatusOpen, domain.StatusInProgress)
}

// ChangeStatus moves a ticket to target if the transition is legal and notifies the creator.
func (s *TicketService) ChangeStatus(ctx context.Context, id int64, target domain.Status, actorID int64, actorRole domain.Role) error {
	if err := requireReviewer(actorRole); err != nil {
		return err
	}
	if !target.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": target})
	}

	var current domain.Status
	defer s.locks.lock(id)()
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if current, err = s.tickets.GetStatus(ctx, id); err != nil {
			return err
		}
		if !domain.CanChange(current, target) {
			return apperrors.NewInvalidTransition(current.String(), target.String())
		}
		changed, err := s.tickets.TransitionStatus(ctx, id, current, target)
		if err != nil {
			return err
		}
		if !changed {
			// Another writer committed in between; report against what is stored now.
			latest, err := s.tickets.GetStatus(ctx, id)
			if err != nil {
				return err
			}
			return apperrors.NewInvalidTransition(latest.String(), target.String())
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewTicketStatusChanged(id, actorID, current, target))
	return nil
}

// Forward hands the ticket from the course tutor to the course author. The creator is not notified.
func (s *TicketService) Forward(ctx context.Context, id int64, actorRole domain.Role) error {
	if err := requireReviewer(actorRole); err != nil {
		return err
	}
	return s.tickets.Forward(ctx, id)
}

// Update overrides the derived priority.
func (s *TicketService) Update(ctx context.Context, id int64, priority domain.Priority, actorRole domain.Role) error {
	if err := requireReviewer(actorRole); err != nil {
		return err
	}
	if !priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	return s.tickets.Update(ctx, id, priority)
}

// AddComment appends a comment and notifies the creator unless they wrote it themselves.
func (s *TicketService) AddComment(ctx context.Context, id, writerID int64, message string) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	comment := &domain.Comment{TicketID: id, CreatorID: writerID, Message: message}
	var creatorID int64
	defer s.locks.lock(id)()
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.Get(ctx, id)
		if err != nil {
			return err
		}
		creatorID = ticket.CreatorID
		return s.comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	if writerID != creatorID {
		s.publish(ctx, events.NewTicketCommentAdded(id, *comment))
	}
	return comment, nil
}

// Search filters tickets. Students cannot filter by priority; their priority filter is ignored.
func (s *TicketService) Search(ctx context.Context, actorRole domain.Role, criteria repository.SearchCriteria) ([]domain.TicketWithNames, error) {
	if actorRole.Compare(domain.RoleStudent) >= 0 {
		criteria.Priority = nil
	}
	return s.tickets.Search(ctx, criteria)
}

// CanOpen reports whether the actor may view the ticket. Staff may view every ticket,
// students only their own.
func (s *TicketService) CanOpen(ctx context.Context, id, actorID int64, actorRole domain.Role) (bool, error) {
	if actorRole.Compare(domain.RoleStudent) < 0 {
		return true, nil
	}
	return s.tickets.IsCreator(ctx, id, actorID)
}

// ListAssigned returns the review queue of a tutor or author. Less privileged roles get an empty list.
func (s *TicketService) ListAssigned(ctx context.Context, actorID int64, actorRole domain.Role) ([]domain.TicketWithNames, error) {
	if !actorRole.Authorized(domain.RoleTutor) {
		return []domain.TicketWithNames{}, nil
	}
	return s.tickets.ListByAssigneeID(ctx, actorID)
}

// List returns every ticket with course and creator names.
func (s *TicketService) List(ctx context.Context) ([]domain.TicketWithNames, error) {
	return s.tickets.ListWithNames(ctx)
}

// ListOwn returns the tickets created by creatorID.
func (s *TicketService) ListOwn(ctx context.Context, creatorID int64) ([]domain.TicketWithNames, error) {
	return s.tickets.ListByCreatorID(ctx, creatorID)
}

// ListCourseNames returns the courses tickets can be reported against.
func (s *TicketService) ListCourseNames(ctx context.Context) ([]domain.CourseName, error) {
	return s.courses.ListNames(ctx)
}

func requireReviewer(role domain.Role) error {
	if !role.Authorized(domain.RoleTutor) {
		return apperrors.NewForbidden("tutor role or higher required")
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("publish event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err),
		)
	}
}
