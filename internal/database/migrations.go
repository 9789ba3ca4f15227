package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	log.Info().Msg("running migrations")

	migrations := []string{
		// Guests. user_id is the Telegram user id; verification, language
		// and block state live next to the mutable profile fields.
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			is_verified INTEGER NOT NULL DEFAULT 0,
			language TEXT,
			is_blocked INTEGER NOT NULL DEFAULT 0,
			blocked_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)`,

		// Relay correlation: one row per message delivered to the admin.
		// relay_message_id is the id of the admin-side copy; the unique
		// index both enforces the correlation-key invariant and keeps
		// reply resolution an indexed lookup.
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			relay_message_id INTEGER NOT NULL,
			source_user_id INTEGER NOT NULL,
			source_message_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (source_user_id) REFERENCES users(user_id) ON DELETE CASCADE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_relay_message_id ON messages(relay_message_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	log.Info().Msg("migrations completed")
	return nil
}
