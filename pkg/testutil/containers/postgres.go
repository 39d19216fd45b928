//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with the service
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// schema is the full deletion governance schema. Kept here instead of a
// migration tool so integration tests stay self-contained.
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'open',
	deleted_at     TIMESTAMPTZ,
	deleted_by     TEXT,
	deleted_reason TEXT,
	deletion_type  TEXT
);

CREATE TABLE IF NOT EXISTS candidates (
	id             TEXT PRIMARY KEY,
	job_id         TEXT,
	name           TEXT NOT NULL DEFAULT '',
	deleted_at     TIMESTAMPTZ,
	deleted_by     TEXT,
	deleted_reason TEXT,
	deletion_type  TEXT
);

CREATE TABLE IF NOT EXISTS feedback (
	id             TEXT PRIMARY KEY,
	candidate_id   TEXT,
	note           TEXT NOT NULL DEFAULT '',
	deleted_at     TIMESTAMPTZ,
	deleted_by     TEXT,
	deleted_reason TEXT,
	deletion_type  TEXT
);

CREATE TABLE IF NOT EXISTS job_share_links (
	id     TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS deletion_approvals (
	id               UUID PRIMARY KEY,
	resource_type    TEXT NOT NULL,
	resource_id      TEXT NOT NULL,
	resource_name    TEXT NOT NULL DEFAULT '',
	requested_by     TEXT NOT NULL,
	deletion_reason  TEXT NOT NULL,
	risk_level       TEXT NOT NULL,
	requires_mfa     BOOLEAN NOT NULL DEFAULT FALSE,
	status           TEXT NOT NULL,
	correlation_id   UUID NOT NULL,
	metadata         JSONB,
	decided_by       TEXT,
	rejection_reason TEXT,
	created_at       TIMESTAMPTZ NOT NULL,
	decided_at       TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS deletion_approvals_pending_uq
	ON deletion_approvals (resource_type, resource_id)
	WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS resource_snapshots (
	id             UUID PRIMARY KEY,
	resource_type  TEXT NOT NULL,
	resource_id    TEXT NOT NULL,
	resource_name  TEXT NOT NULL DEFAULT '',
	state          JSONB NOT NULL,
	deletion_type  TEXT NOT NULL,
	correlation_id UUID NOT NULL,
	captured_by    TEXT NOT NULL,
	captured_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS resource_snapshots_correlation_idx
	ON resource_snapshots (correlation_id);

CREATE TABLE IF NOT EXISTS audit_events (
	id                UUID PRIMARY KEY,
	action            TEXT NOT NULL,
	category          TEXT NOT NULL,
	actor_id          TEXT NOT NULL,
	actor_kind        TEXT NOT NULL,
	actor_name        TEXT NOT NULL DEFAULT '',
	actor_auth_method TEXT NOT NULL DEFAULT '',
	resource_type     TEXT NOT NULL,
	resource_id       TEXT NOT NULL,
	resource_name     TEXT NOT NULL DEFAULT '',
	payload           JSONB,
	user_agent        TEXT NOT NULL DEFAULT '',
	browser           TEXT NOT NULL DEFAULT '',
	client_ip         TEXT NOT NULL DEFAULT '',
	correlation_id    UUID NOT NULL,
	timestamp         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_events_resource_idx
	ON audit_events (resource_type, resource_id, timestamp);
`

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("rhelloflow_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// Truncate empties the given tables between tests.
func (p *PostgresContainer) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
