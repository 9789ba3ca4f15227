package repository

import (
	"database/sql"
	"fmt"
)

// RelayStats is a point-in-time snapshot of bot activity.
type RelayStats struct {
	TotalUsers      int64
	VerifiedUsers   int64
	BlockedUsers    int64
	RelayedMessages int64
}

// StatsRepository aggregates counters for the admin /stats command
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Snapshot returns current totals over users and relayed messages.
func (r *StatsRepository) Snapshot() (*RelayStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_verified = 1),
			(SELECT COUNT(*) FROM users WHERE is_blocked = 1),
			(SELECT COUNT(*) FROM messages)
	`

	stats := &RelayStats{}
	err := r.db.QueryRow(query).Scan(
		&stats.TotalUsers,
		&stats.VerifiedUsers,
		&stats.BlockedUsers,
		&stats.RelayedMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	return stats, nil
}
