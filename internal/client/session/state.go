package session

import "github.com/dmitrijs2005/healthkeeper/internal/client/models"

// State is where the store is in its lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the store. Readers get the whole value;
// writers replace it.
type Snapshot struct {
	State   State
	Session *models.Session
}

// Loading is true until the first session lookup has finished.
func (s Snapshot) Loading() bool {
	return s.State == StateUninitialized || s.State == StateLoading
}

// User is the signed-in user, or nil.
func (s Snapshot) User() *models.User {
	if s.Session == nil {
		return nil
	}
	return s.Session.User
}

func snapshotFor(sess *models.Session) *Snapshot {
	if sess == nil {
		return &Snapshot{State: StateUnauthenticated}
	}
	return &Snapshot{State: StateAuthenticated, Session: sess}
}
