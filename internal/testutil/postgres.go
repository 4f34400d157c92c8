//go:build integration

// Package testutil spins up throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/critiq-dev/critiq/db"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupDatabase starts a fresh Postgres container, points the global database
// handle at it and migrates the schema. The container is terminated when the
// test finishes.
func SetupDatabase(t *testing.T) {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:alpine",
		tcpostgres.WithDatabase("critiq_test"),
		tcpostgres.WithUsername("critiq"),
		tcpostgres.WithPassword("critiq"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := db.ConnectDatabase(connStr); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}
