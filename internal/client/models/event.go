package models

// AuthEventType names a change in the backend client's session.
type AuthEventType string

const (
	EventInitialSession AuthEventType = "INITIAL_SESSION"
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent carries the session as it is after the change (nil after
// sign-out).
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}
