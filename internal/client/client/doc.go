// Package client talks to the hosted backend: its auth service
// (/auth/v1) and its REST gateway over Postgres (/rest/v1).
//
// # Overview
//
// The package provides:
//  1. The Client contract, split into Auth (password and OAuth sign-in,
//     sign-up, refresh, sign-out, auth-state events) and Data (table
//     select/insert/update and RPC calls).
//  2. HTTPClient, the net/http implementation. It owns the device's single
//     session, persists it through a SessionStorage, restores it on first
//     use and refreshes it when the access token has expired.
//  3. Query, a small builder for eq filters, ordering and limits.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) applying the
//     embedded goose migrations to the client's SQLite file.
//
// # Error Handling
//
// Non-2xx answers are returned as *APIError carrying the backend message.
// APIError unwraps to ErrNotFound (zero rows on a single-object read),
// ErrUnauthorized or ErrUnavailable where the status allows; transport
// failures wrap ErrUnavailable. A refused refresh token ends the session and
// wraps ErrSessionRevoked. Match with errors.Is.
//
// # Events
//
// Subscribe registers one listener. Events arrive in the order the session
// changed, starting with INITIAL_SESSION; producers never block on a slow
// consumer.
package client
