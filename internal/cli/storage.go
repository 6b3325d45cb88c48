package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/api/http/handlers"
	"github.com/spec-kit/amelio/internal/config"
	"github.com/spec-kit/amelio/internal/persistence"
	"github.com/spec-kit/amelio/internal/repository"
	"github.com/spec-kit/amelio/internal/repository/gormrepo"
)

// storage holds the repositories of the configured driver.
type storage struct {
	tx       repository.Transactor
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	courses  repository.CourseRepository

	pingers map[string]handlers.Pinger
	closers []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStorage connects the configured database, applies the schema when migrate is set
// and wraps the course repository with the Redis cache when Redis is configured.
func openStorage(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*storage, error) {
	s := &storage{pingers: map[string]handlers.Pinger{}}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pg.Close)
		s.pingers["postgres"] = pg

		pool := pg.PoolHandle()
		if migrate {
			if err := persistence.RunMigrations(ctx, pool, cfg.Database.MigrationsDir, logger); err != nil {
				s.Close()
				return nil, err
			}
		}
		s.tx = repository.NewTransactor(pool)
		s.tickets = repository.NewTicketRepository(pool)
		s.comments = repository.NewCommentRepository(pool)
		s.users = repository.NewUserRepository(pool)
		s.courses = repository.NewCourseRepository(pool)

	case config.DriverSQLite:
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.pingers["sqlite"] = db

		if migrate {
			if err := gormrepo.Migrate(db.DB); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate sqlite: %w", err)
			}
			logger.Info("sqlite schema migrated", zap.String("path", cfg.SQLite.Path))
		}
		s.tx = gormrepo.NewTransactor(db.DB)
		s.tickets = gormrepo.NewTicketRepository(db.DB)
		s.comments = gormrepo.NewCommentRepository(db.DB)
		s.users = gormrepo.NewUserRepository(db.DB)
		s.courses = gormrepo.NewCourseRepository(db.DB)

	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Database.Driver)
	}

	if rdb := persistence.NewRedis(cfg.Redis, logger); rdb != nil {
		s.closers = append(s.closers, rdb.Close)
		s.pingers["redis"] = rdb
		s.courses = repository.NewCachedCourseRepository(s.courses, rdb.ClientHandle(), cfg.Redis.CourseCacheTTL, logger)
	}

	logger.Info("storage ready", zap.String("driver", cfg.Database.Driver))
	return s, nil
}
