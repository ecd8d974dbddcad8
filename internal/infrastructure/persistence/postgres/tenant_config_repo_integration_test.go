//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/domain/repository/repotest"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/suitability/pkg/logger"
)

func TestTenantConfigRepository_PostgresContract(t *testing.T) {
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("suitability"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{})
	require.NoError(t, err)
	conn, err := postgres.NewDBConnectionFromGorm(db, logger.NewNoopLogger())
	require.NoError(t, err)

	repotest.RunContractTests(t, func(t *testing.T) repository.TenantConfigRepository {
		require.NoError(t, db.Exec("DROP TABLE IF EXISTS tenant_configurations").Error)
		repo, err := postgres.NewTenantConfigRepository(ctx, conn, logger.NewNoopLogger())
		require.NoError(t, err)
		return repo
	})
}
