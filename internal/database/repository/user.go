package repository

import (
	"database/sql"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/artur/relay-bot/internal/database/models"
)

// UserRepository handles guest state persistence
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram creates the guest on first contact or refreshes the
// mutable profile fields on later contacts. Verification, language and block
// state are never touched here, so replayed deliveries cannot regress them.
func (r *UserRepository) UpsertFromTelegram(tgUser *tgbotapi.User) (*models.User, error) {
	if tgUser == nil {
		return nil, fmt.Errorf("telegram user is nil")
	}

	query := `
		INSERT INTO users (user_id, username, first_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name
	`

	if _, err := r.db.Exec(query, tgUser.ID, tgUser.UserName, tgUser.FirstName, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetByID(tgUser.ID)
}

// GetByID retrieves a guest by Telegram user id. Returns nil when the guest
// has never been seen.
func (r *UserRepository) GetByID(userID int64) (*models.User, error) {
	query := `
		SELECT user_id, username, first_name, is_verified, language, is_blocked, blocked_at, created_at
		FROM users
		WHERE user_id = ?
	`

	user := &models.User{}
	var username, firstName, language sql.NullString
	var blockedAt sql.NullTime

	err := r.db.QueryRow(query, userID).Scan(
		&user.UserID,
		&username,
		&firstName,
		&user.IsVerified,
		&language,
		&user.IsBlocked,
		&blockedAt,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.Language = language.String
	if blockedAt.Valid {
		t := blockedAt.Time
		user.BlockedAt = &t
	}

	return user, nil
}

// SetVerified marks the guest as human-verified. Idempotent: verifying an
// already verified guest is a no-op.
func (r *UserRepository) SetVerified(userID int64) error {
	if _, err := r.db.Exec(`UPDATE users SET is_verified = 1 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to set verified: %w", err)
	}
	return nil
}

// SetLanguage stores the guest's selected language code. Re-selection is
// allowed and simply overwrites.
func (r *UserRepository) SetLanguage(userID int64, code string) error {
	if _, err := r.db.Exec(`UPDATE users SET language = ? WHERE user_id = ?`, code, userID); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return nil
}

// Block excludes the guest from all guest-facing flows.
func (r *UserRepository) Block(userID int64) error {
	if _, err := r.db.Exec(`UPDATE users SET is_blocked = 1, blocked_at = ? WHERE user_id = ?`, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}
	return nil
}

// Unblock lifts a block.
func (r *UserRepository) Unblock(userID int64) error {
	if _, err := r.db.Exec(`UPDATE users SET is_blocked = 0, blocked_at = NULL WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	return nil
}
