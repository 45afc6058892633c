// Package db provides PostgreSQL storage for jobs, candidates and match runs.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/candidate-matcher/internal/types"
)

//go:embed schema.sql
var schemaSQL string

const (
	// DefaultListLimit is used when a history query gives no limit
	DefaultListLimit = 20
	// MaxListLimit caps history queries
	MaxListLimit = 100
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks the database connection
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Schema returns the embedded schema SQL
func Schema() string {
	return schemaSQL
}

// clampLimit applies the default and maximum to a history query limit
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// encodeSkills marshals skills as a JSON array, never null
func encodeSkills(skills []types.Skill) ([]byte, error) {
	if skills == nil {
		skills = []types.Skill{}
	}
	return json.Marshal(skills)
}

// decodeSkills reads a JSONB skill list. Plain strings are accepted as skill names.
func decodeSkills(raw []byte) ([]types.Skill, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var skills []types.Skill
	if err := json.Unmarshal(raw, &skills); err == nil {
		return skills, nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	skills = make([]types.Skill, 0, len(names))
	for _, name := range names {
		skills = append(skills, types.Skill{Name: name})
	}
	return skills, nil
}

// decodeValues reads a JSONB string list such as company_values
func decodeValues(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	return values, nil
}
