package domain

import "time"

// Session backs the session-cookie authentication the HTTP surface requires
// (§6 "authenticated by a session cookie"). A session never expires unless
// ExpiredAt is set explicitly (logout).
type Session struct {
	ID        string
	UserID    string
	ExpiredAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
