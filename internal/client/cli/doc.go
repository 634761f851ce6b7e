// Package cli provides the interactive HealthKeeper command-line client.
//
// It wires configuration, the local sealed session database, the backend
// client and the session store, then runs a REPL. Signed out, the user can
// register, log in with a password or sign in through an OAuth provider in
// the system browser. Signed in, the REPL offers the profile, water intake,
// medications and the dashboard summary.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
