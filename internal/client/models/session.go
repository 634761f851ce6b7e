package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity carried by a session.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is the backend-issued credential pair plus the identity it belongs
// to. A device holds at most one.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	// ExpiresAt is in unix seconds.
	ExpiresAt int64 `json:"expires_at"`
	User      *User `json:"user"`
}

// expiryMargin treats a token as expired slightly early so a request does not
// race its own expiry on the wire.
const expiryMargin = 10 * time.Second

// Expired reports whether the access token is no longer usable at now.
// A zero ExpiresAt is never considered expired.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == 0 {
		return false
	}
	return !now.Add(expiryMargin).Before(time.Unix(s.ExpiresAt, 0))
}

// UserID returns the owning user's id, or uuid.Nil for an anonymous session.
func (s *Session) UserID() uuid.UUID {
	if s == nil || s.User == nil {
		return uuid.Nil
	}
	return s.User.ID
}

// TokenPair is what the OAuth redirect delivers.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
