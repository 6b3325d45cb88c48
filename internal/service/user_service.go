package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/auth"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// Inviter delivers the activation link to an invited user.
type Inviter interface {
	SendInvitation(user domain.User)
}

// UserService manages accounts: admins invite users, who then choose their password.
type UserService struct {
	users   repository.UserRepository
	hasher  auth.Hasher
	inviter Inviter
	logger  *zap.Logger
}

// UserDependencies bundles collaborators for user service.
type UserDependencies struct {
	UserRepo repository.UserRepository
	Hasher   auth.Hasher
	Inviter  Inviter
	Logger   *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:   deps.UserRepo,
		hasher:  deps.Hasher,
		inviter: deps.Inviter,
		logger:  logger,
	}
}

// Invite creates an inactive user and mails them an activation code.
// The username is the user's mail address.
func (s *UserService) Invite(ctx context.Context, username, name string, role domain.Role) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	name = strings.TrimSpace(name)

	details := map[string]any{}
	if _, err := mail.ParseAddress(username); err != nil {
		details["username"] = "must be a mail address"
	}
	if name == "" {
		details["name"] = "required"
	}
	if !role.Valid() {
		details["role"] = "invalid"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user", details)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	user := &domain.User{
		Username: username,
		Name:     name,
		Role:     role,
		Active:   false,
		Code:     uuid.NewString(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user invited", zap.Int64("user_id", user.ID), zap.String("role", role.String()))
	if s.inviter != nil {
		s.inviter.SendInvitation(*user)
	}
	return user, nil
}

// Activate sets the password of the user holding code and enables the account.
// The code is single use.
func (s *UserService) Activate(ctx context.Context, code, password string) (*domain.User, error) {
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	user, err := s.users.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.users.Activate(ctx, user.ID, hash); err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	user.Active = true
	user.Code = ""
	s.logger.Info("user activated", zap.Int64("user_id", user.ID))
	return user, nil
}

// List returns active and inactive users separately, each ordered by name.
func (s *UserService) List(ctx context.Context) (active, inactive []domain.User, err error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	active = make([]domain.User, 0, len(users))
	inactive = make([]domain.User, 0)
	for _, u := range users {
		if u.Active {
			active = append(active, u)
		} else {
			inactive = append(inactive, u)
		}
	}
	return active, inactive, nil
}

// ListNamesByRole returns id and name of active users with role.
func (s *UserService) ListNamesByRole(ctx context.Context, role domain.Role) ([]domain.UserName, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	return s.users.ListNamesByRole(ctx, role)
}
