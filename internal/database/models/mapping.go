package models

import "time"

// MessageMapping correlates a message delivered to the admin with the guest
// message it was relayed from. RelayMessageID is the admin-side message id
// and is unique; rows are immutable once written.
type MessageMapping struct {
	ID              int64
	RelayMessageID  int
	SourceUserID    int64
	SourceMessageID int
	CreatedAt       time.Time
}
