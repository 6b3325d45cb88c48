package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/amelio/internal/config"
	"github.com/spec-kit/amelio/internal/domain"
)

func useTestConfig(t *testing.T) {
	t.Helper()
	prevCfg, prevLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })

	cfg = &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		SQLite:   config.SQLiteConfig{Path: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            bcrypt.MinCost,
			AdminUsername:         "admin",
			AdminPassword:         "admin-geheim",
		},
	}
	logger = zap.NewNop()
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	useTestConfig(t)
	cfg.Database.Driver = "mysql"

	_, err := openStorage(context.Background(), cfg, true, logger)
	assert.Error(t, err)
}

func TestSeed_IsRepeatable(t *testing.T) {
	useTestConfig(t)
	ctx := context.Background()

	store, err := openStorage(ctx, cfg, true, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	assert.Contains(t, store.pingers, "sqlite")
	assert.NotContains(t, store.pingers, "redis")

	require.NoError(t, seed(ctx, store))
	require.NoError(t, seed(ctx, store))

	count, err := store.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleUsers)+1), count)

	courses, err := store.courses.ListWithNames(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, len(sampleCourses))

	tickets, err := store.tickets.List(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 5)
	for _, ticket := range tickets {
		assert.Equal(t, domain.StatusOpen, ticket.Status)
		assert.Equal(t, ticket.Category.Priority(), ticket.Priority)
	}

	sleeper, err := store.users.FindByUsername(ctx, "sleeper1@amelio.local")
	require.NoError(t, err)
	assert.False(t, sleeper.Active)

	admin, err := store.users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsInitialAdmin())
}
