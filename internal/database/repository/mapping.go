package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/artur/relay-bot/internal/database/models"
)

// MappingRepository handles relay message correlation persistence
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new MappingRepository
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Record inserts the mapping for one successfully relayed message. Returns
// ErrDuplicateMapping if relayMessageID was already recorded.
func (r *MappingRepository) Record(relayMessageID int, sourceUserID int64, sourceMessageID int) error {
	query := `
		INSERT INTO messages (relay_message_id, source_user_id, source_message_id, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, relayMessageID, sourceUserID, sourceMessageID, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateMapping
		}
		return fmt.Errorf("failed to record mapping: %w", err)
	}

	return nil
}

// Resolve looks up the guest behind an admin-side message id. Returns
// ErrNotFound for ids that were never recorded or have been pruned.
func (r *MappingRepository) Resolve(relayMessageID int) (*models.MessageMapping, error) {
	query := `
		SELECT id, relay_message_id, source_user_id, source_message_id, created_at
		FROM messages
		WHERE relay_message_id = ?
	`

	m := &models.MessageMapping{}
	err := r.db.QueryRow(query, relayMessageID).Scan(
		&m.ID,
		&m.RelayMessageID,
		&m.SourceUserID,
		&m.SourceMessageID,
		&m.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mapping: %w", err)
	}

	return m, nil
}

// DeleteOlderThan prunes mappings created before cutoff and reports how many
// rows were removed. Replies to pruned messages resolve to ErrNotFound.
func (r *MappingRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM messages WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune mappings: %w", err)
	}
	return res.RowsAffected()
}
