// Package models defines the client-side data types: the auth session and
// the rows of the profiles, hydration_logs and medications tables, plus the
// dashboard summary and auth events.
package models
