package gormrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/config"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/persistence"
)

type fixture struct {
	db       *gorm.DB
	tickets  *ticketRepository
	comments *commentRepository
	users    *userRepository
	courses  *courseRepository

	admin, author, tutor, student domain.User
	course                        domain.Course
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	store, err := persistence.NewSQLite(config.SQLiteConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, Migrate(store.DB))
	return store.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{
		db:       db,
		tickets:  NewTicketRepository(db).(*ticketRepository),
		comments: NewCommentRepository(db).(*commentRepository),
		users:    NewUserRepository(db).(*userRepository),
		courses:  NewCourseRepository(db).(*courseRepository),
	}

	ctx := context.Background()
	f.admin = f.createUser(t, "admin", "Administrator", domain.RoleAdmin)
	f.author = f.createUser(t, "author", "Anna Autorin", domain.RoleAuthor)
	f.tutor = f.createUser(t, "tutor", "Tom Tutor", domain.RoleTutor)
	f.student = f.createUser(t, "student", "Sina Studentin", domain.RoleStudent)

	f.course = domain.Course{Code: "IOBP01", Title: "Objektorientierte Programmierung", AuthorID: f.author.ID, TutorID: f.tutor.ID, Active: true}
	require.NoError(t, f.courses.Create(ctx, &f.course))
	return f
}

func (f *fixture) createUser(t *testing.T, username, name string, role domain.Role) domain.User {
	t.Helper()
	u := domain.User{Username: username, PasswordHash: "x", Name: name, Role: role, Active: true}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func (f *fixture) createTicket(t *testing.T, title string, category domain.Category, medium domain.Medium, ty domain.TicketType) int64 {
	t.Helper()
	id, err := f.tickets.Create(context.Background(), domain.NewTicket{
		Type:        ty,
		Title:       title,
		Description: "Beschreibung",
		Category:    category,
		CourseID:    f.course.ID,
		CreatorID:   f.student.ID,
	}, category.Priority(), medium)
	require.NoError(t, err)
	return id
}
