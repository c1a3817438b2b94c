package integration_tests

import (
	"context"
	"os"
	"testing"
	"time"

	"invoicehub/internal/database"
	"invoicehub/internal/models"
	"invoicehub/internal/storage/postgres"
	"invoicehub/internal/transport/dto"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool
var testRedisClient *redis.Client

// getTestClients connects to the database named by TEST_DATABASE_URL and applies
// the migrations. Tests are skipped when the variable is unset.
func getTestClients(t *testing.T) (*pgxpool.Pool, *redis.Client) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL environment variable not set")
	}

	if testPool == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := database.Connect(ctx, dsn, 5)
		require.NoError(t, err, "Failed to connect to test database")

		applied, err := database.Migrate(ctx, pool)
		require.NoError(t, err, "Failed to migrate test database")
		log.Info().Strs("applied", applied).Msg("Test database migrated")
		testPool = pool
	}

	if testRedisClient == nil {
		if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: addr})
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Str("addr", addr).Msg("Test Redis unreachable, Redis-backed tests will be skipped")
			} else {
				testRedisClient = rdb
			}
		}
	}
	return testPool, testRedisClient
}

// cleanupTables truncates every application table for test isolation.
func cleanupTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, "TRUNCATE invoice_events, invoices, users CASCADE")
	require.NoError(t, err, "Failed to truncate tables")
}

// createTestUser inserts an onboarded user.
func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, email string) *models.User {
	t.Helper()
	repo := postgres.NewUserRepo(pool)
	user, err := repo.Create(ctx, &dto.CreateUserRequest{Email: email, PasswordHash: "not-a-real-hash"})
	require.NoError(t, err, "Failed to create test user %s", email)

	user, err = repo.UpdateProfile(ctx, &dto.OnboardRequest{
		FirstName: "Test",
		LastName:  "User",
		Address:   "1 Test Street",
		UserId:    user.ID,
	})
	require.NoError(t, err, "Failed to onboard test user %s", email)
	return user
}
