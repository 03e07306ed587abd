// Package testutil provides test helpers for integration tests that need a
// real PostgreSQL instance.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Artemis21/polycalc-api/internal/config"
	"github.com/Artemis21/polycalc-api/internal/storage/postgres"
)

// unitTypesSchema mirrors migrations/0001_create_unit_types.up.sql so tests
// do not depend on the migrate tool.
const unitTypesSchema = `
	CREATE TABLE IF NOT EXISTS unit_types (
		id           TEXT             PRIMARY KEY,
		display_name TEXT             NOT NULL,
		aliases      TEXT[],
		hidden       BOOLEAN          NOT NULL DEFAULT FALSE,
		health       DOUBLE PRECISION NOT NULL,
		attack       DOUBLE PRECISION NOT NULL,
		defence      DOUBLE PRECISION NOT NULL,
		attack_range INTEGER          NOT NULL,
		abilities    TEXT[]
	);
`

// NewPool returns a connected pool with the unit_types schema applied, for
// integration tests. With TEST_DSN set it connects there; otherwise, with
// TEST_CONTAINERS set, it starts a throwaway PostgreSQL container. With
// neither set the calling test is skipped.
//
// Postcondition: Returns a usable pool, skips the test, or fails it.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if dsn := os.Getenv("TEST_DSN"); dsn != "" {
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			t.Fatalf("connecting to test DB: %v", err)
		}
		t.Cleanup(pool.Close)
		applySchema(t, pool)
		return pool
	}

	if os.Getenv("TEST_CONTAINERS") == "" {
		t.Skip("TEST_DSN and TEST_CONTAINERS not set; skipping integration test")
	}

	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The unit_types table exists in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	applySchema(t, pc.RawPool)
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	start := time.Now()

	if _, err := pool.Exec(context.Background(), unitTypesSchema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	t.Logf("schema applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
