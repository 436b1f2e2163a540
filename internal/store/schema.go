package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements creates the fixed tables. Per-state data tables are
// created by the import pipeline, not here.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS uccdatahub`,
	`CREATE TABLE IF NOT EXISTS uccdatahub.users (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		business_name TEXT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		last_login TIMESTAMPTZ,
		last_purchase TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS uccdatahub.profiles (
		name TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES uccdatahub.users (id),
		config JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS uccdatahub.configurations (
		state TEXT PRIMARY KEY,
		config JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS uccdatahub.transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES uccdatahub.users (id),
		order_id TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		record_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		csv_data TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_created_idx
		ON uccdatahub.transactions (user_id, created_at DESC)`,
}

// EnsureSchema creates the application schema and fixed tables if they
// are absent. Safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
