package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amelio/internal/api/dto"
	"github.com/spec-kit/amelio/internal/auth"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	"github.com/spec-kit/amelio/internal/service"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	medium, err := mediumFromPayload(req.Medium)
	if err != nil {
		return err
	}

	id, err := h.service.Create(c.UserContext(), domain.NewTicket{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CourseID:    req.CourseID,
		CreatorID:   principal.UserID,
	}, medium)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreatedResponse{ID: id}})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// ListOwnTickets GET /tickets/mine.
func (h *TicketsHandler) ListOwnTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListOwn(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// ListAssignedTickets GET /tickets/assigned.
func (h *TicketsHandler) ListAssignedTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListAssigned(c.UserContext(), principal.UserID, principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// SearchTickets GET /tickets/search.
func (h *TicketsHandler) SearchTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	criteria, err := parseSearchCriteria(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.Search(c.UserContext(), principal.Role, criteria)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, id, err := h.openTicket(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetWithRels(c.UserContext(), id, principal.UserID, principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ChangeStatus(c.UserContext(), id, req.Status, principal.UserID, principal.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "status": req.Status}})
}

// Activate POST /tickets/:id/activate.
func (h *TicketsHandler) Activate(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	activated, err := h.service.Activate(c.UserContext(), id, principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "activated": activated}})
}

// Forward POST /tickets/:id/forward.
func (h *TicketsHandler) Forward(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.service.Forward(c.UserContext(), id, principal.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "forwarded": true}})
}

// UpdatePriority POST /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Update(c.UserContext(), id, req.Priority, principal.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "priority": req.Priority}})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, id, err := h.openTicket(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), id, principal.UserID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CommentResponse{
		ID:          comment.ID,
		CreatorID:   comment.CreatorID,
		CreatorName: principal.Name,
		Message:     comment.Message,
		Timestamp:   comment.Timestamp,
	}})
}

// openTicket resolves the ticket id and checks that the caller may see the ticket.
func (h *TicketsHandler) openTicket(c *fiber.Ctx) (*auth.Principal, int64, error) {
	principal, err := requirePrincipal(c)
	if err != nil {
		return nil, 0, err
	}
	id, err := paramID(c)
	if err != nil {
		return nil, 0, err
	}
	ok, err := h.service.CanOpen(c.UserContext(), id, principal.UserID, principal.Role)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, apperrors.NewForbidden("ticket belongs to another user")
	}
	return principal, id, nil
}

func parseSearchCriteria(c *fiber.Ctx) (repository.SearchCriteria, error) {
	var criteria repository.SearchCriteria
	if title := strings.TrimSpace(c.Query("title")); title != "" {
		criteria.Title = &title
	}
	if raw := c.Query("course_id"); raw != "" {
		courseID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return criteria, apperrors.NewValidationError("invalid course_id", map[string]any{"course_id": raw})
		}
		criteria.CourseID = &courseID
	}
	if raw := c.Query("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError(err.Error(), nil)
		}
		criteria.Category = &category
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError(err.Error(), nil)
		}
		criteria.Priority = &priority
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError(err.Error(), nil)
		}
		criteria.Status = &status
	}
	return criteria, nil
}

func mediumFromPayload(p dto.MediumPayload) (domain.Medium, error) {
	switch p.Kind {
	case domain.MediumKindText:
		return domain.MediumText{Page: p.Page, Line: p.Line}, nil
	case domain.MediumKindRecording:
		t, err := domain.ParseTimeOfDay(p.Time)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid medium", map[string]any{"time": err.Error()})
		}
		return domain.MediumRecording{Time: t}, nil
	case domain.MediumKindInteractive:
		return domain.MediumInteractive{URL: p.URL}, nil
	case domain.MediumKindQuestionaire:
		return domain.MediumQuestionaire{Question: p.Question, Answer: p.Answer}, nil
	default:
		return nil, apperrors.NewValidationError("invalid medium", map[string]any{"kind": p.Kind})
	}
}

func mediumPayload(m domain.Medium) dto.MediumPayload {
	switch m := m.(type) {
	case domain.MediumText:
		return dto.MediumPayload{Kind: m.Kind(), Page: m.Page, Line: m.Line}
	case domain.MediumRecording:
		return dto.MediumPayload{Kind: m.Kind(), Time: m.Time.String()}
	case domain.MediumInteractive:
		return dto.MediumPayload{Kind: m.Kind(), URL: m.URL}
	case domain.MediumQuestionaire:
		return dto.MediumPayload{Kind: m.Kind(), Question: m.Question, Answer: m.Answer}
	default:
		return dto.MediumPayload{}
	}
}

func ticketSummaries(tickets []domain.TicketWithNames) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func ticketSummary(ticket *domain.TicketWithNames) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		Type:        ticket.Type,
		Title:       ticket.Title,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Forwarded:   ticket.Forwarded,
		CourseID:    ticket.CourseID,
		CourseName:  ticket.CourseName,
		CreatorID:   ticket.CreatorID,
		CreatorName: ticket.CreatorName,
	}
}

func ticketDetail(ticket *domain.TicketWithRels) dto.TicketDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(ticket.Comments))
	for _, comment := range ticket.Comments {
		comments = append(comments, dto.CommentResponse{
			ID:          comment.ID,
			CreatorID:   comment.CreatorID,
			CreatorName: comment.CreatorName,
			Message:     comment.Message,
			Timestamp:   comment.Timestamp,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(&ticket.TicketWithNames),
		Description:   ticket.Description,
		Medium:        mediumPayload(ticket.Medium),
		NextStatus:    ticket.Status.Next(),
		Comments:      comments,
	}
}
