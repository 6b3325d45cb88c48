package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/auth"
	"github.com/spec-kit/amelio/internal/config"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/events"
	"github.com/spec-kit/amelio/internal/mail"
	"github.com/spec-kit/amelio/internal/observability"
	"github.com/spec-kit/amelio/internal/persistence"
	"github.com/spec-kit/amelio/internal/repository"
	"github.com/spec-kit/amelio/internal/repository/gormrepo"
	"github.com/spec-kit/amelio/internal/worker"
)

const testPassword = "geheim123"

var errSMTPDown = errors.New("smtp relay unreachable")

type recordingSender struct {
	mu    sync.Mutex
	mails []mail.Mail
	err   error
}

func (s *recordingSender) Send(_ context.Context, m mail.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.mails = append(s.mails, m)
	return nil
}

func (s *recordingSender) sent() []mail.Mail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Mail(nil), s.mails...)
}

type harness struct {
	db      *gorm.DB
	users   repository.UserRepository
	tickets repository.TicketRepository
	courses repository.CourseRepository

	ticketSvc *TicketService
	userSvc   *UserService
	authSvc   *AuthService
	courseSvc *CourseService

	dispatcher events.Dispatcher
	logger     *zap.Logger

	pool    *worker.Pool
	sender  *recordingSender
	metrics *observability.Metrics
	logs    *observer.ObservedLogs
	hasher  auth.Hasher

	admin, author, tutor, student, otherStudent domain.User
	course                                      domain.Course
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	store, err := persistence.NewSQLite(config.SQLiteConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, gormrepo.Migrate(store.DB))
	return store.DB
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            bcrypt.MinCost,
			AdminUsername:         "admin@amelio.test",
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newTestDB(t)
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	h := &harness{
		db:      db,
		users:   gormrepo.NewUserRepository(db),
		tickets: gormrepo.NewTicketRepository(db),
		courses: gormrepo.NewCourseRepository(db),
		pool:    worker.NewPool(2, 32, logger),
		sender:  &recordingSender{},
		metrics: observability.NewMetrics(),
		logs:    logs,
		logger:  logger,
		hasher:  auth.NewBcryptHasher(bcrypt.MinCost),
	}
	t.Cleanup(func() { _ = h.pool.Shutdown(context.Background()) })

	dispatcher := events.NewInMemoryDispatcher(logger)
	h.dispatcher = dispatcher
	notifications := NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Pool:       h.pool,
		UserRepo:   h.users,
		TicketRepo: h.tickets,
		Renderer:   mail.NewRenderer("https://amelio.test"),
		Sender:     h.sender,
		Metrics:    h.metrics,
		Logger:     logger,
	})
	notifications.RegisterHandlers()

	h.ticketSvc = h.ticketServiceWith(h.tickets)
	h.userSvc = NewUserService(UserDependencies{UserRepo: h.users, Hasher: h.hasher, Inviter: notifications, Logger: logger})
	h.authSvc = NewAuthService(testConfig(), AuthDependencies{UserRepo: h.users, Hasher: h.hasher, Logger: logger})
	h.courseSvc = NewCourseService(CourseDependencies{CourseRepo: h.courses, UserRepo: h.users})

	h.admin = h.createUser(t, "admin@amelio.test", "Administrator", domain.RoleAdmin)
	h.author = h.createUser(t, "autorin@amelio.test", "Anna Autorin", domain.RoleAuthor)
	h.tutor = h.createUser(t, "tutor@amelio.test", "Tom Tutor", domain.RoleTutor)
	h.student = h.createUser(t, "sina@amelio.test", "Sina Studentin", domain.RoleStudent)
	h.otherStudent = h.createUser(t, "otto@amelio.test", "Otto Student", domain.RoleStudent)

	h.course = domain.Course{Code: "IOBP01", Title: "Objektorientierte Programmierung", AuthorID: h.author.ID, TutorID: h.tutor.ID, Active: true}
	require.NoError(t, h.courses.Create(context.Background(), &h.course))
	return h
}

// ticketServiceWith builds a ticket service that shares the harness storage and
// notification pipeline but reads and writes tickets through tickets.
func (h *harness) ticketServiceWith(tickets repository.TicketRepository) *TicketService {
	return NewTicketService(TicketDependencies{
		Transactor:  gormrepo.NewTransactor(h.db),
		TicketRepo:  tickets,
		CommentRepo: gormrepo.NewCommentRepository(h.db),
		CourseRepo:  h.courses,
		Dispatcher:  h.dispatcher,
		Logger:      h.logger,
	})
}

func (h *harness) createUser(t *testing.T, username, name string, role domain.Role) domain.User {
	t.Helper()
	hash, err := h.hasher.Hash(testPassword)
	require.NoError(t, err)
	u := domain.User{Username: username, PasswordHash: hash, Name: name, Role: role, Active: true}
	require.NoError(t, h.users.Create(context.Background(), &u))
	return u
}

func (h *harness) createTicket(t *testing.T, creator domain.User, title string, category domain.Category) int64 {
	t.Helper()
	id, err := h.ticketSvc.Create(context.Background(), domain.NewTicket{
		Type:        domain.TicketTypeCourseBook,
		Title:       title,
		Description: "Auf Seite 12 fehlt ein Wort.",
		Category:    category,
		CourseID:    h.course.ID,
		CreatorID:   creator.ID,
	}, domain.MediumText{Page: 12, Line: 3})
	require.NoError(t, err)
	return id
}

func (h *harness) status(t *testing.T, id int64) domain.Status {
	t.Helper()
	status, err := h.tickets.GetStatus(context.Background(), id)
	require.NoError(t, err)
	return status
}

// drain waits for every queued notification. The pool accepts no jobs afterwards.
func (h *harness) drain(t *testing.T) []mail.Mail {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.pool.Shutdown(ctx))
	return h.sender.sent()
}
