package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/usage"
)

// PostgresStore is a PostgreSQL implementation of credential.Repository and
// usage.EventStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPool opens and pings a connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS api_keys (
		api_key    TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS usage_events (
		id        UUID PRIMARY KEY,
		api_key   TEXT NOT NULL,
		endpoint  TEXT NOT NULL,
		called_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS usage_events_api_key_called_at_idx
		ON usage_events (api_key, called_at)`,
}

// Migrate creates the schema. It is safe to run on every start.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, record *credential.Record) (bool, error) {
	query := `
		INSERT INTO api_keys (api_key, created_at)
		VALUES ($1, $2)
		ON CONFLICT (api_key) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query, string(record.Key), record.CreatedAt)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresStore) Revoke(ctx context.Context, key credential.APIKey, at time.Time) error {
	query := `
		UPDATE api_keys
		SET revoked_at = $2
		WHERE api_key = $1 AND revoked_at IS NULL
	`

	_, err := p.pool.Exec(ctx, query, string(key), at)

	return err
}

func (p *PostgresStore) Get(ctx context.Context, key credential.APIKey) (*credential.Record, error) {
	query := `
		SELECT api_key, created_at, revoked_at
		FROM api_keys
		WHERE api_key = $1
	`

	var record credential.Record

	err := p.pool.QueryRow(ctx, query, string(key)).Scan(
		&record.Key,
		&record.CreatedAt,
		&record.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credential.ErrNotFound
		}

		return nil, err
	}

	return &record, nil
}

func (p *PostgresStore) AppendUsageEvent(ctx context.Context, event *usage.Event) error {
	// Stream redelivery may hand us the same event twice.
	query := `
		INSERT INTO usage_events (id, api_key, endpoint, called_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.ID,
		string(event.APIKey),
		string(event.Endpoint),
		event.CalledAt,
	)

	return err
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}
