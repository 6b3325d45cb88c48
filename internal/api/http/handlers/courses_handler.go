package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amelio/internal/api/dto"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/service"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// CoursesHandler exposes course endpoints.
type CoursesHandler struct {
	courses *service.CourseService
	tickets *service.TicketService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService, ticketService *service.TicketService) *CoursesHandler {
	return &CoursesHandler{courses: courseService, tickets: ticketService}
}

// ListNames handles GET /courses.
func (h *CoursesHandler) ListNames(c *fiber.Ctx) error {
	names, err := h.tickets.ListCourseNames(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CourseNameResponse, 0, len(names))
	for _, n := range names {
		items = append(items, dto.CourseNameResponse{ID: n.ID, Code: n.Code, Title: n.Title})
	}
	return c.JSON(fiber.Map{"data": items})
}

// List handles GET /courses/all.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	courses, err := h.courses.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, courseResponse(&courses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	course, err := h.courses.CreateCourse(c.UserContext(), principal.Role, domain.Course{
		Code:     req.Code,
		Title:    req.Title,
		AuthorID: req.AuthorID,
		TutorID:  req.TutorID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreatedResponse{ID: course.ID}})
}

// Enable handles POST /courses/:id/enable.
func (h *CoursesHandler) Enable(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.EnableCourseRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"active": "required"})
	}
	if err := h.courses.Enable(c.UserContext(), principal.Role, id, *req.Active); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "active": *req.Active}})
}

func courseResponse(course *domain.CourseWithNames) dto.CourseResponse {
	return dto.CourseResponse{
		ID:         course.ID,
		Code:       course.Code,
		Title:      course.Title,
		Active:     course.Active,
		AuthorID:   course.AuthorID,
		AuthorName: course.AuthorName,
		TutorID:    course.TutorID,
		TutorName:  course.TutorName,
	}
}
