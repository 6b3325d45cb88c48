package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository/gormrepo"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

func TestUserService_InviteAndActivate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	invited, err := h.userSvc.Invite(ctx, " Neu@Amelio.Test ", "Nora Neu", domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "neu@amelio.test", invited.Username)
	assert.False(t, invited.Active)
	require.NotEmpty(t, invited.Code)

	_, _, _, err = h.authSvc.Login(ctx, invited.Username, testPassword)
	assert.True(t, apperrors.IsUnauthorized(err))

	activated, err := h.userSvc.Activate(ctx, invited.Code, testPassword)
	require.NoError(t, err)
	assert.True(t, activated.Active)
	assert.Empty(t, activated.Code)

	user, token, _, err := h.authSvc.Login(ctx, invited.Username, testPassword)
	require.NoError(t, err)
	assert.Equal(t, invited.ID, user.ID)
	assert.NotEmpty(t, token)

	_, err = h.userSvc.Activate(ctx, invited.Code, "anderes-passwort")
	assert.True(t, apperrors.IsNotFound(err), "code must be single use")

	mails := h.drain(t)
	require.Len(t, mails, 1)
	assert.Equal(t, "neu@amelio.test", mails[0].To.Email)
	assert.Equal(t, "Amelio Registrierung", mails[0].Subject)
	assert.Contains(t, mails[0].Body, "https://amelio.test/activate/"+invited.Code)
}

func TestUserService_InviteValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.userSvc.Invite(ctx, "kein-mail", "Nora", domain.RoleStudent)
	assert.True(t, isValidation(err))
	_, err = h.userSvc.Invite(ctx, "nora@amelio.test", "", domain.RoleStudent)
	assert.True(t, isValidation(err))
	_, err = h.userSvc.Invite(ctx, "nora@amelio.test", "Nora", "dean")
	assert.True(t, isValidation(err))
	_, err = h.userSvc.Invite(ctx, h.tutor.Username, "Zweiter Tom", domain.RoleTutor)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = h.userSvc.Activate(ctx, "whatever", "kurz")
	assert.True(t, isValidation(err))
	assert.Empty(t, h.drain(t))
}

func TestUserService_List(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.userSvc.Invite(ctx, "neu@amelio.test", "Nora Neu", domain.RoleTutor)
	require.NoError(t, err)

	active, inactive, err := h.userSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 5)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Nora Neu", inactive[0].Name)

	tutors, err := h.userSvc.ListNamesByRole(ctx, domain.RoleTutor)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserName{{ID: h.tutor.ID, Name: h.tutor.Name}}, tutors)
}

func TestAuthService_Login(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, token, exp, err := h.authSvc.Login(ctx, h.tutor.Username, testPassword)
	require.NoError(t, err)
	assert.Equal(t, h.tutor.ID, user.ID)
	assert.False(t, exp.IsZero())

	claims, err := h.authSvc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, h.tutor.ID, claims.UserID)
	assert.Equal(t, domain.RoleTutor, claims.Role)

	_, _, _, err = h.authSvc.Login(ctx, h.tutor.Username, "falsch")
	assert.True(t, apperrors.IsUnauthorized(err))
	_, _, _, err = h.authSvc.Login(ctx, "niemand@amelio.test", testPassword)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthService_ChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.authSvc.ChangePassword(ctx, h.student.ID, "falsch", "neues-passwort")
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.True(t, isValidation(h.authSvc.ChangePassword(ctx, h.student.ID, testPassword, "kurz")))

	require.NoError(t, h.authSvc.ChangePassword(ctx, h.student.ID, testPassword, "neues-passwort"))
	_, _, _, err = h.authSvc.Login(ctx, h.student.Username, "neues-passwort")
	require.NoError(t, err)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	db := newTestDB(t)
	users := gormrepo.NewUserRepository(db)
	cfg := testConfig()
	cfg.Auth.AdminPassword = "startpasswort"
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users, Logger: zap.NewNop()})
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.IsInitialAdmin())

	again, err := svc.EnsureAdmin(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)

	_, _, _, err = svc.Login(ctx, cfg.Auth.AdminUsername, "startpasswort")
	require.NoError(t, err)
}

func TestCourseService_CreateCourse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	input := domain.Course{Code: " iobp02 ", Title: "Algorithmen", AuthorID: h.author.ID, TutorID: h.tutor.ID}

	_, err := h.courseSvc.CreateCourse(ctx, domain.RoleTutor, input)
	assert.True(t, apperrors.IsUnauthorized(err))

	swapped := input
	swapped.AuthorID, swapped.TutorID = h.tutor.ID, h.author.ID
	_, err = h.courseSvc.CreateCourse(ctx, domain.RoleAdmin, swapped)
	assert.True(t, isValidation(err))

	course, err := h.courseSvc.CreateCourse(ctx, domain.RoleAdmin, input)
	require.NoError(t, err)
	assert.Equal(t, "IOBP02", course.Code)
	assert.True(t, course.Active)

	courses, err := h.courseSvc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	for _, c := range courses {
		assert.Equal(t, h.author.Name, c.AuthorName)
		assert.Equal(t, h.tutor.Name, c.TutorName)
	}

	names, err := h.ticketSvc.ListCourseNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestCourseService_Enable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.True(t, apperrors.IsUnauthorized(h.courseSvc.Enable(ctx, domain.RoleAuthor, h.course.ID, false)))
	assert.True(t, apperrors.IsNotFound(h.courseSvc.Enable(ctx, domain.RoleAdmin, 999, false)))

	require.NoError(t, h.courseSvc.Enable(ctx, domain.RoleAdmin, h.course.ID, false))
	names, err := h.ticketSvc.ListCourseNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = h.ticketSvc.Create(ctx, domain.NewTicket{
		Type:        domain.TicketTypeCourseBook,
		Title:       "Kurs deaktiviert",
		Description: "Der Kurs nimmt keine Tickets mehr an.",
		Category:    domain.CategoryEditorial,
		CourseID:    h.course.ID,
		CreatorID:   h.student.ID,
	}, domain.MediumText{Page: 1, Line: 1})
	assert.True(t, isValidation(err))

	require.NoError(t, h.courseSvc.Enable(ctx, domain.RoleAdmin, h.course.ID, true))
	h.createTicket(t, h.student, "Kurs wieder aktiv", domain.CategoryEditorial)
}
