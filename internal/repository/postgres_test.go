package repository

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/config"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/persistence"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

// The tests in this file need a disposable Postgres database. They truncate every
// table they touch.
const testDatabaseEnv = "DATABASE_URL"

type pgFixture struct {
	pool     *pgxpool.Pool
	tx       Transactor
	tickets  TicketRepository
	comments CommentRepository
	users    UserRepository
	courses  CourseRepository

	author, tutor, student domain.User
	course                 domain.Course
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv(testDatabaseEnv)
	if dsn == "" {
		t.Skipf("%s not set (point it at a disposable postgres database)", testDatabaseEnv)
	}

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 8}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pg.Pool, "../../migrations", zap.NewNop()))

	truncate := func() {
		_, err := pg.Pool.Exec(context.Background(), `TRUNCATE comments, medium_texts, medium_recordings,
            medium_interactives, medium_questionaires, tickets, courses, users RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)

	f := &pgFixture{
		pool:     pg.Pool,
		tx:       NewTransactor(pg.Pool),
		tickets:  NewTicketRepository(pg.Pool),
		comments: NewCommentRepository(pg.Pool),
		users:    NewUserRepository(pg.Pool),
		courses:  NewCourseRepository(pg.Pool),
	}
	f.author = f.createUser(t, "autorin@amelio.test", "Anna Autorin", domain.RoleAuthor)
	f.tutor = f.createUser(t, "tutor@amelio.test", "Tom Tutor", domain.RoleTutor)
	f.student = f.createUser(t, "sina@amelio.test", "Sina Studentin", domain.RoleStudent)

	f.course = domain.Course{Code: "IOBP01", Title: "Objektorientierte Programmierung", AuthorID: f.author.ID, TutorID: f.tutor.ID, Active: true}
	require.NoError(t, f.courses.Create(ctx, &f.course))
	return f
}

func (f *pgFixture) createUser(t *testing.T, username, name string, role domain.Role) domain.User {
	t.Helper()
	u := domain.User{Username: username, PasswordHash: "x", Name: name, Role: role, Active: true}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func (f *pgFixture) newTicket(title string, ty domain.TicketType, category domain.Category, courseID int64) domain.NewTicket {
	return domain.NewTicket{
		Type:        ty,
		Title:       title,
		Description: "Beschreibung",
		Category:    category,
		CourseID:    courseID,
		CreatorID:   f.student.ID,
	}
}

func (f *pgFixture) createTicket(t *testing.T, ticket domain.NewTicket, medium domain.Medium) int64 {
	t.Helper()
	return f.createTicketIn(context.Background(), t, ticket, medium)
}

// createTicketIn creates the ticket with ctx so it joins a surrounding transaction.
func (f *pgFixture) createTicketIn(ctx context.Context, t *testing.T, ticket domain.NewTicket, medium domain.Medium) int64 {
	t.Helper()
	id, err := f.tickets.Create(ctx, ticket, ticket.Category.Priority(), medium)
	require.NoError(t, err)
	return id
}

func (f *pgFixture) ticketCount(t *testing.T) int {
	t.Helper()
	all, err := f.tickets.List(context.Background())
	require.NoError(t, err)
	return len(all)
}

func ptr[T any](v T) *T { return &v }

func TestPostgresTicketRepository_CreateAndGetWithRels(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	tests := []struct {
		ty     domain.TicketType
		medium domain.Medium
	}{
		{domain.TicketTypeCourseBook, domain.MediumText{Page: 12, Line: 3}},
		{domain.TicketTypeVodcast, domain.MediumRecording{Time: domain.TimeOfDay{Minute: 4, Second: 20}}},
		{domain.TicketTypeInteractiveBook, domain.MediumInteractive{URL: "https://example.org/uebung/3"}},
		{domain.TicketTypeOnlineTest, domain.MediumQuestionaire{Question: 5, Answer: "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.ty.String(), func(t *testing.T) {
			id := f.createTicket(t, f.newTicket("Medium "+tt.ty.String(), tt.ty, domain.CategoryContent, f.course.ID), tt.medium)

			rels, err := f.tickets.GetWithRels(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.medium, rels.Medium)
			assert.Equal(t, domain.StatusOpen, rels.Status)
			assert.Equal(t, domain.PriorityHigh, rels.Priority)
			assert.Equal(t, f.course.Title, rels.CourseName)
			assert.Equal(t, f.student.Name, rels.CreatorName)
			assert.Empty(t, rels.Comments)
		})
	}
}

func TestPostgresTicketRepository_CreateIsAtomic(t *testing.T) {
	f := newPGFixture(t)

	// The ticket row is written first; the page does not fit the INTEGER column.
	_, err := f.tickets.Create(context.Background(),
		f.newTicket("Zu große Seite", domain.TicketTypeCourseBook, domain.CategoryEditorial, f.course.ID),
		domain.PriorityMedium,
		domain.MediumText{Page: math.MaxInt32 + 1, Line: 1},
	)
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	assert.Zero(t, f.ticketCount(t))
}

func TestPostgresTransactor(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		f.createTicketIn(ctx, t, f.newTicket("Rollback", domain.TicketTypeCourseBook, domain.CategoryEditorial, f.course.ID), domain.MediumText{Page: 1, Line: 1})
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.ticketCount(t))

	var id int64
	err = f.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		id = f.createTicketIn(ctx, t, f.newTicket("Commit", domain.TicketTypeCourseBook, domain.CategoryEditorial, f.course.ID), domain.MediumText{Page: 1, Line: 1})
		return f.tickets.SetStatus(ctx, id, domain.StatusInProgress)
	})
	require.NoError(t, err)
	status, err := f.tickets.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)
}

func TestPostgresRepositories_ZeroRowWrites(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	const missing = 9999

	assert.True(t, apperrors.IsNotFound(f.tickets.Update(ctx, missing, domain.PriorityLow)))
	assert.True(t, apperrors.IsNotFound(f.tickets.Forward(ctx, missing)))
	assert.True(t, apperrors.IsNotFound(f.tickets.SetStatus(ctx, missing, domain.StatusAccepted)))
	assert.True(t, apperrors.IsNotFound(f.users.Activate(ctx, missing, "hash")))
	assert.True(t, apperrors.IsNotFound(f.courses.SetActive(ctx, missing, false)))

	_, err := f.tickets.Get(ctx, missing)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.tickets.GetWithRels(ctx, missing)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.tickets.GetStatus(ctx, missing)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.courses.Get(ctx, missing)
	assert.True(t, apperrors.IsNotFound(err))

	changed, err := f.tickets.TransitionStatus(ctx, missing, domain.StatusOpen, domain.StatusInProgress)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPostgresTicketRepository_TransitionStatus(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	id := f.createTicket(t, f.newTicket("Bedingt", domain.TicketTypeCourseBook, domain.CategoryContent, f.course.ID), domain.MediumText{Page: 2, Line: 2})

	changed, err := f.tickets.TransitionStatus(ctx, id, domain.StatusInProgress, domain.StatusAccepted)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = f.tickets.TransitionStatus(ctx, id, domain.StatusOpen, domain.StatusInProgress)
	require.NoError(t, err)
	assert.True(t, changed)

	status, err := f.tickets.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)
}

func TestPostgresTicketRepository_Search(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	maths := domain.Course{Code: "IMT101", Title: "Mathematik I", AuthorID: f.author.ID, TutorID: f.tutor.ID, Active: true}
	require.NoError(t, f.courses.Create(ctx, &maths))

	percent := f.createTicket(t, f.newTicket("100% FALSCH gerechnet", domain.TicketTypeCourseBook, domain.CategoryContent, maths.ID), domain.MediumText{Page: 1, Line: 1})
	typo := f.createTicket(t, f.newTicket("Tippfehler", domain.TicketTypeCourseBook, domain.CategoryEditorial, f.course.ID), domain.MediumText{Page: 2, Line: 1})
	wrong := f.createTicket(t, f.newTicket("Falsche Formel", domain.TicketTypeVodcast, domain.CategoryContent, f.course.ID), domain.MediumRecording{Time: domain.TimeOfDay{Minute: 1}})
	require.NoError(t, f.tickets.SetStatus(ctx, wrong, domain.StatusInProgress))

	tests := []struct {
		name     string
		criteria SearchCriteria
		want     []int64
	}{
		{"no filter", SearchCriteria{}, []int64{wrong, typo, percent}},
		{"title ignores case", SearchCriteria{Title: ptr("falsch")}, []int64{wrong, percent}},
		{"title percent is literal", SearchCriteria{Title: ptr("0% f")}, []int64{percent}},
		{"course", SearchCriteria{CourseID: ptr(f.course.ID)}, []int64{wrong, typo}},
		{"course and category", SearchCriteria{CourseID: ptr(f.course.ID), Category: ptr(domain.CategoryContent)}, []int64{wrong}},
		{"title and priority", SearchCriteria{Title: ptr("falsch"), Priority: ptr(domain.PriorityHigh)}, []int64{wrong, percent}},
		{"all filters", SearchCriteria{
			Title:    ptr("formel"),
			CourseID: ptr(f.course.ID),
			Category: ptr(domain.CategoryContent),
			Priority: ptr(domain.PriorityHigh),
			Status:   ptr(domain.StatusInProgress),
		}, []int64{wrong}},
		{"status excludes", SearchCriteria{Title: ptr("falsch"), Status: ptr(domain.StatusOpen)}, []int64{percent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tickets.Search(ctx, tt.criteria)
			require.NoError(t, err)
			ids := make([]int64, 0, len(got))
			for _, ticket := range got {
				ids = append(ids, ticket.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestPostgresTicketRepository_AssigneeQueue(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	kept := f.createTicket(t, f.newTicket("Beim Tutor", domain.TicketTypeCourseBook, domain.CategoryEditorial, f.course.ID), domain.MediumText{Page: 1, Line: 1})
	forwarded := f.createTicket(t, f.newTicket("Bei der Autorin", domain.TicketTypeCourseBook, domain.CategoryEditorial, f.course.ID), domain.MediumText{Page: 1, Line: 2})
	require.NoError(t, f.tickets.Forward(ctx, forwarded))

	tutorQueue, err := f.tickets.ListByAssigneeID(ctx, f.tutor.ID)
	require.NoError(t, err)
	require.Len(t, tutorQueue, 1)
	assert.Equal(t, kept, tutorQueue[0].ID)

	authorQueue, err := f.tickets.ListByAssigneeID(ctx, f.author.ID)
	require.NoError(t, err)
	require.Len(t, authorQueue, 1)
	assert.Equal(t, forwarded, authorQueue[0].ID)

	own, err := f.tickets.ListByCreatorID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)
}

func TestPostgresCommentRepository_ThreadOrder(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	id := f.createTicket(t, f.newTicket("Diskussion", domain.TicketTypeCourseBook, domain.CategoryContent, f.course.ID), domain.MediumText{Page: 1, Line: 1})

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	later := domain.Comment{TicketID: id, CreatorID: f.tutor.ID, Timestamp: base.Add(time.Minute), Message: "Wird geprüft"}
	earlier := domain.Comment{TicketID: id, CreatorID: f.student.ID, Timestamp: base, Message: "Seite 1 ist falsch"}
	require.NoError(t, f.comments.Create(ctx, &later))
	require.NoError(t, f.comments.Create(ctx, &earlier))

	thread, err := f.comments.ListByTicket(ctx, id)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, earlier.ID, thread[0].ID)
	assert.Equal(t, f.student.Name, thread[0].CreatorName)
	assert.Equal(t, later.ID, thread[1].ID)

	orphan := domain.Comment{TicketID: 9999, CreatorID: f.tutor.ID, Message: "Kein Ticket"}
	assert.True(t, apperrors.IsPersistence(f.comments.Create(ctx, &orphan)))

	creator, err := f.users.FindTicketCreator(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.student.ID, creator.ID)
}

func TestPostgresCourseRepository_SetActive(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	require.NoError(t, f.courses.SetActive(ctx, f.course.ID, false))
	course, err := f.courses.Get(ctx, f.course.ID)
	require.NoError(t, err)
	assert.False(t, course.Active)

	names, err := f.courses.ListNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	all, err := f.courses.ListWithNames(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, f.author.Name, all[0].AuthorName)
	assert.Equal(t, f.tutor.Name, all[0].TutorName)
}
