package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/walletfy/walletfy/internal/config"
	"github.com/walletfy/walletfy/internal/database"
)

const (
	pgDatabase = "walletfy"
	pgUser     = "test_walletfy"
	pgPassword = "test_walletfy"
	pgSchema   = "walletfy"
)

// SetupPostgres starts a Postgres container, applies all migrations and
// returns a pool connected to it. The test is skipped when no container
// runtime is available.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to read container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to read container port: %v", err)
	}
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   pgUser,
		Pass:   pgPassword,
		Name:   pgDatabase,
		Schema: pgSchema,
	}

	pool, err := database.OpenPostgres(cfg)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.MigratePostgres(pool, cfg); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return pool
}
