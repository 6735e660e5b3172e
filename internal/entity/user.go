package entity

import "time"

// User is a participant in the exchange. Created on first contact, never
// deleted.
type User struct {
	ID           string     `json:"id"`
	TelegramID   int64      `json:"telegram_id"`
	Username     string     `json:"username"`
	Strikes      int        `json:"strikes"`
	Paused       bool       `json:"paused"`
	BannedUntil  *time.Time `json:"banned_until,omitempty"`
	LastActiveAt time.Time  `json:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
