package models

import "time"

// User is created lazily the first time an identifier shows up in a
// request (vote, question, answer). Identity comes from the upstream
// proxy header, so there is exactly one row per distinct identifier
// and nothing like a password lives here.
type User struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Identifier string `gorm:"uniqueIndex;not null" json:"identifier"` // opaque, usually an email
	Username   string `json:"username"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionResponse struct {
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	UserID     int    `json:"user_id"`
	Message    string `json:"message"`
}
