// Package session holds the client's authentication state machine (Store)
// and the OAuth redirect parser (ParseRedirect).
//
// A Store wraps the backend client's Auth half. Its snapshot is read
// lock-free by the UI and replaced whole on every change, whether the
// change came from a direct call (SignIn, SignOut, ...) or from the
// backend's auth event stream. A SIGNED_IN event additionally triggers
// server-side seeding of the user's defaults.
package session
