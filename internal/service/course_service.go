package service

import (
	"context"
	"strings"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// CourseService manages courses and their reviewers.
type CourseService struct {
	courses repository.CourseRepository
	users   repository.UserRepository
}

// CourseDependencies encapsulates repositories required for course management.
type CourseDependencies struct {
	CourseRepo repository.CourseRepository
	UserRepo   repository.UserRepository
}

// NewCourseService constructs the service.
func NewCourseService(deps CourseDependencies) *CourseService {
	return &CourseService{courses: deps.CourseRepo, users: deps.UserRepo}
}

func requireAdmin(role domain.Role) error {
	if role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateCourse creates an active course. The author must hold the author role and the
// tutor the tutor role.
func (s *CourseService) CreateCourse(ctx context.Context, actorRole domain.Role, course domain.Course) (*domain.Course, error) {
	if err := requireAdmin(actorRole); err != nil {
		return nil, err
	}

	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
	course.Title = strings.TrimSpace(course.Title)
	details := map[string]any{}
	if course.Code == "" {
		details["code"] = "required"
	}
	if course.Title == "" {
		details["title"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid course", details)
	}

	if err := s.requireUserRole(ctx, course.AuthorID, domain.RoleAuthor, "author_id"); err != nil {
		return nil, err
	}
	if err := s.requireUserRole(ctx, course.TutorID, domain.RoleTutor, "tutor_id"); err != nil {
		return nil, err
	}

	course.Active = true
	if err := s.courses.Create(ctx, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) requireUserRole(ctx context.Context, userID int64, role domain.Role, field string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("unknown user", map[string]any{field: userID})
		}
		return err
	}
	if user.Role != role {
		return apperrors.NewValidationError("user has wrong role", map[string]any{field: userID, "want": role.String()})
	}
	return nil
}

// Enable sets whether a course accepts new tickets. Existing tickets are not touched.
func (s *CourseService) Enable(ctx context.Context, actorRole domain.Role, id int64, active bool) error {
	if err := requireAdmin(actorRole); err != nil {
		return err
	}
	return s.courses.SetActive(ctx, id, active)
}

// ListCourses returns every course with author and tutor names.
func (s *CourseService) ListCourses(ctx context.Context) ([]domain.CourseWithNames, error) {
	return s.courses.ListWithNames(ctx)
}
