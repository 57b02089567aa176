package models

import "time"

// RefreshToken is an opaque, single-use credential that trades for a new
// access token until Expires.
type RefreshToken struct {
	Token     string
	Address   string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
