package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amelio/internal/api/dto"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/service"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// UsersHandler exposes user management and account activation.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Invite handles POST /users.
func (h *UsersHandler) Invite(c *fiber.Ctx) error {
	var req dto.InviteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.Invite(c.UserContext(), req.Username, req.Name, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	active, inactive, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserListResponse{
		Active:   userResponses(active),
		Inactive: userResponses(inactive),
	}})
}

// ListNames handles GET /users/names?role=tutor.
func (h *UsersHandler) ListNames(c *fiber.Ctx) error {
	role, err := domain.ParseRole(c.Query("role"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	names, err := h.users.ListNamesByRole(c.UserContext(), role)
	if err != nil {
		return err
	}
	items := make([]dto.UserNameResponse, 0, len(names))
	for _, n := range names {
		items = append(items, dto.UserNameResponse{ID: n.ID, Name: n.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Activate handles POST /activate/:code.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.Activate(c.UserContext(), c.Params("code"), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}
