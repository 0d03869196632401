package models

import "time"

// Session is the authenticated identity of the device user.
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	Profile      Profile

	// AccessExpiresAt is zero when the access token carries no exp claim.
	AccessExpiresAt time.Time
}

// Valid reports whether every credential field is populated. A partial
// session is treated as absent.
func (s *Session) Valid() bool {
	return s != nil && s.UserID != "" && s.AccessToken != "" && s.RefreshToken != ""
}

// AccessExpired reports whether the access token is known to have expired at now.
func (s *Session) AccessExpired(now time.Time) bool {
	return s != nil && !s.AccessExpiresAt.IsZero() && !now.Before(s.AccessExpiresAt)
}
