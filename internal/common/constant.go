// Package common contains shared constants, sentinel errors and small helpers
// used across healthkeeper components.
package common

const (
	// APIKeyHeaderName carries the project key on every backend request.
	APIKeyHeaderName = "apikey"
	// AuthorizationHeaderName carries "Bearer <access token>" (or the project
	// key when no session is present).
	AuthorizationHeaderName = "Authorization"
)

// DateLayout is the calendar-date format used by the backend's date columns.
const DateLayout = "2006-01-02"
