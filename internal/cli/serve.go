package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/amelio/internal/api/http"
	"github.com/spec-kit/amelio/internal/api/http/handlers"
	"github.com/spec-kit/amelio/internal/auth"
	"github.com/spec-kit/amelio/internal/events"
	"github.com/spec-kit/amelio/internal/mail"
	"github.com/spec-kit/amelio/internal/observability"
	"github.com/spec-kit/amelio/internal/service"
	"github.com/spec-kit/amelio/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStorage(ctx, cfg, cfg.Database.RunMigrations, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		metrics := observability.NewMetrics()
		dispatcher := events.NewInMemoryDispatcher(logger)
		pool := worker.NewPool(cfg.Notification.Workers, cfg.Notification.QueueSize, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := pool.Shutdown(shutdownCtx); err != nil {
				logger.Warn("notification queue not drained", zap.Error(err))
			}
		}()

		notifications := service.NewNotificationService(service.NotificationDependencies{
			Dispatcher: dispatcher,
			Pool:       pool,
			UserRepo:   store.users,
			TicketRepo: store.tickets,
			Renderer:   mail.NewRenderer(cfg.App.BaseURL),
			Sender:     newSender(),
			Metrics:    metrics,
			Logger:     logger,
		})
		if cfg.Notification.Enabled {
			notifications.RegisterHandlers()
		} else {
			logger.Info("ticket notifications disabled")
		}

		hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
		ticketService := service.NewTicketService(service.TicketDependencies{
			Transactor:  store.tx,
			TicketRepo:  store.tickets,
			CommentRepo: store.comments,
			CourseRepo:  store.courses,
			Dispatcher:  dispatcher,
			Logger:      logger,
		})
		userService := service.NewUserService(service.UserDependencies{
			UserRepo: store.users,
			Hasher:   hasher,
			Inviter:  notifications,
			Logger:   logger,
		})
		authService := service.NewAuthService(*cfg, service.AuthDependencies{
			UserRepo: store.users,
			Hasher:   hasher,
			Logger:   logger,
		})
		courseService := service.NewCourseService(service.CourseDependencies{
			CourseRepo: store.courses,
			UserRepo:   store.users,
		})

		if _, err := authService.EnsureAdmin(ctx); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}

		app := fiber.New(fiber.Config{
			AppName:               cfg.App.Name,
			DisableStartupMessage: true,
		})
		httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store.pingers),
			Auth:           handlers.NewAuthHandler(authService),
			Users:          handlers.NewUsersHandler(userService),
			Courses:        handlers.NewCoursesHandler(courseService, ticketService),
			Tickets:        handlers.NewTicketsHandler(ticketService),
			Metrics:        handlers.NewMetricsHandler(metrics),
			AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.users),
		})

		listenErr := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("version", cfg.App.Version))
			listenErr <- app.Listen(cfg.App.Addr())
		}()

		select {
		case err := <-listenErr:
			return fmt.Errorf("fiber listen: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down")
		}

		return app.ShutdownWithTimeout(shutdownTimeout)
	},
}

func newSender() mail.Sender {
	n := cfg.Notification
	if !n.SMTPEnabled() {
		logger.Info("smtp not configured, mails are logged only")
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     n.SMTPHost,
		Port:     n.SMTPPort,
		Username: n.SMTPUsername,
		Password: n.SMTPPassword,
		From:     n.EmailFrom,
		FromName: cfg.App.Name,
	})
}
