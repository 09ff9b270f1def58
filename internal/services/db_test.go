package services_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The models carry Postgres column defaults (gen_random_uuid, jsonb) that
// sqlite cannot migrate, so tests create the bits of schema they need by
// hand. The services always set IDs explicitly, so no defaults are required.
var testSchema = []string{
	`CREATE TABLE users (
		id text PRIMARY KEY,
		email text NOT NULL UNIQUE,
		password text NOT NULL,
		role text DEFAULT 'user',
		created_at datetime,
		updated_at datetime,
		deleted_at datetime
	)`,
	`CREATE TABLE refresh_tokens (
		id text PRIMARY KEY,
		user_id text NOT NULL,
		token_hash text NOT NULL UNIQUE,
		expires_at datetime NOT NULL,
		revoked numeric NOT NULL DEFAULT 0,
		created_at datetime
	)`,
	`CREATE TABLE todos (
		id text PRIMARY KEY,
		owner_id text NOT NULL,
		title text NOT NULL,
		completed numeric NOT NULL DEFAULT 0,
		created_at datetime,
		updated_at datetime,
		deleted_at datetime
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// An in-memory sqlite database exists per connection; cap the pool so
	// every query sees the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range testSchema {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

// stubChecker is a fixed-answer SubscriptionChecker.
type stubChecker struct {
	active bool
}

func (s stubChecker) IsActive(uuid.UUID) bool { return s.active }
