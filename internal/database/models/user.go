package models

import "time"

// User represents a guest stored in the database. UserID is the Telegram
// user id. Language is empty until the guest picks one during onboarding.
type User struct {
	UserID     int64
	Username   string
	FirstName  string
	IsVerified bool
	Language   string
	IsBlocked  bool
	BlockedAt  *time.Time
	CreatedAt  time.Time
}
