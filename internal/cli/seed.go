package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/auth"
	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/events"
	"github.com/spec-kit/amelio/internal/service"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type sampleUser struct {
	username string
	name     string
	role     domain.Role
	active   bool
}

var sampleUsers = []sampleUser{
	{"student1@amelio.local", "Max Mustermann", domain.RoleStudent, true},
	{"student2@amelio.local", "Maria Meister", domain.RoleStudent, true},
	{"sleeper1@amelio.local", "Bernd Faultier", domain.RoleStudent, false},
	{"sleeper2@amelio.local", "Regina Schlafmaus", domain.RoleStudent, false},
	{"autor1@amelio.local", "Anna Autorin", domain.RoleAuthor, true},
	{"tutor1@amelio.local", "Tim Tutor", domain.RoleTutor, true},
}

type sampleCourse struct {
	code   string
	title  string
	author string
	tutor  string
	active bool
}

var sampleCourses = []sampleCourse{
	{"TEST01", "Testkurs 1", "autor1@amelio.local", "tutor1@amelio.local", true},
	{"TEST02", "Testkurs 2", "autor1@amelio.local", "tutor1@amelio.local", true},
	{"TEST03", "Testkurs 3", "autor1@amelio.local", "tutor1@amelio.local", false},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample users, courses and tickets for local testing",
	Long: `Seed creates the initial admin and a small data set for local testing.
Existing users and courses are left untouched. Sample users log in with their
username as password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage(cmd.Context(), cfg, true, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		return seed(cmd.Context(), store)
	},
}

func seed(ctx context.Context, store *storage) error {
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: store.users,
		Hasher:   hasher,
		Logger:   logger,
	})
	if _, err := authService.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	ids, err := seedUsers(ctx, store, hasher)
	if err != nil {
		return err
	}
	courseIDs, err := seedCourses(ctx, store, ids)
	if err != nil {
		return err
	}

	tickets := service.NewTicketService(service.TicketDependencies{
		Transactor:  store.tx,
		TicketRepo:  store.tickets,
		CommentRepo: store.comments,
		CourseRepo:  store.courses,
		Dispatcher:  events.NewInMemoryDispatcher(logger),
		Logger:      logger,
	})
	return seedTickets(ctx, store, tickets, ids, courseIDs)
}

func seedUsers(ctx context.Context, store *storage, hasher auth.Hasher) (map[string]int64, error) {
	ids := make(map[string]int64, len(sampleUsers))
	for _, su := range sampleUsers {
		existing, err := store.users.FindByUsername(ctx, su.username)
		if err == nil {
			ids[su.username] = existing.ID
			continue
		}
		if !apperrors.IsNotFound(err) {
			return nil, err
		}

		user := &domain.User{Username: su.username, Name: su.name, Role: su.role, Active: su.active}
		if su.active {
			if user.PasswordHash, err = hasher.Hash(su.username); err != nil {
				return nil, err
			}
		}
		if err := store.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", su.username, err)
		}
		ids[su.username] = user.ID
		logger.Info("sample user created", zap.String("username", su.username), zap.String("role", su.role.String()))
	}
	return ids, nil
}

func seedCourses(ctx context.Context, store *storage, users map[string]int64) (map[string]int64, error) {
	existing, err := store.courses.ListWithNames(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(sampleCourses))
	for _, c := range existing {
		ids[c.Code] = c.ID
	}

	for _, sc := range sampleCourses {
		if _, ok := ids[sc.code]; ok {
			continue
		}
		course := &domain.Course{
			Code:     sc.code,
			Title:    sc.title,
			AuthorID: users[sc.author],
			TutorID:  users[sc.tutor],
			Active:   sc.active,
		}
		if err := store.courses.Create(ctx, course); err != nil {
			return nil, fmt.Errorf("create course %s: %w", sc.code, err)
		}
		ids[sc.code] = course.ID
		logger.Info("sample course created", zap.String("code", sc.code))
	}
	return ids, nil
}

func seedTickets(ctx context.Context, store *storage, tickets *service.TicketService, users, courses map[string]int64) error {
	existing, err := store.tickets.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("tickets present, skipping sample tickets", zap.Int("count", len(existing)))
		return nil
	}

	student1 := users["student1@amelio.local"]
	student2 := users["student2@amelio.local"]
	samples := []struct {
		ticket domain.NewTicket
		medium domain.Medium
	}{
		{
			domain.NewTicket{Type: domain.TicketTypeCourseBook, Title: "Tippfehler in Kapitel 2", Description: "Auf Seite 12 steht 'Variabel' statt 'Variable'.", Category: domain.CategoryEditorial, CourseID: courses["TEST01"], CreatorID: student1},
			domain.MediumText{Page: 12, Line: 3},
		},
		{
			domain.NewTicket{Type: domain.TicketTypeVodcast, Title: "Falsche Formel im Video", Description: "Die Formel bei Minute 4 ist falsch.", Category: domain.CategoryContent, CourseID: courses["TEST01"], CreatorID: student1},
			domain.MediumRecording{Time: domain.TimeOfDay{Minute: 4, Second: 20}},
		},
		{
			domain.NewTicket{Type: domain.TicketTypeInteractiveBook, Title: "Link funktioniert nicht", Description: "Der Verweis auf die Übung führt ins Leere.", Category: domain.CategoryImprovement, CourseID: courses["TEST02"], CreatorID: student2},
			domain.MediumInteractive{URL: "https://example.org/kurs/test02/uebung3"},
		},
		{
			domain.NewTicket{Type: domain.TicketTypeOnlineTest, Title: "Antwort C ist auch richtig", Description: "Bei Frage 5 sind zwei Antworten korrekt.", Category: domain.CategoryContent, CourseID: courses["TEST02"], CreatorID: student2},
			domain.MediumQuestionaire{Question: 5, Answer: "C"},
		},
		{
			domain.NewTicket{Type: domain.TicketTypeReadingList, Title: "Zusätzliche Literatur", Description: "Ein Lehrbuch zur Vertiefung wäre hilfreich.", Category: domain.CategoryAddition, CourseID: courses["TEST02"], CreatorID: student1},
			domain.MediumText{Page: 1, Line: 1},
		},
	}

	for _, sample := range samples {
		id, err := tickets.Create(ctx, sample.ticket, sample.medium)
		if err != nil {
			return fmt.Errorf("create ticket %q: %w", sample.ticket.Title, err)
		}
		logger.Info("sample ticket created", zap.Int64("ticket_id", id))
	}
	return nil
}
