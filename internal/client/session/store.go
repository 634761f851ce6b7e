package session

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/google/uuid"
)

// UserInitializer seeds server-side defaults for a freshly signed-in user.
type UserInitializer interface {
	InitializeUserDefaults(ctx context.Context, sess *models.Session, userID uuid.UUID) error
}

// Store is the process-wide view of who is signed in.
//
// State moves uninitialized -> loading -> {authenticated, unauthenticated}
// and then between the last two. Current never blocks; every change
// replaces the whole snapshot.
type Store struct {
	auth        client.Auth
	initializer UserInitializer
	redirectURL string
	log         logging.Logger

	snap atomic.Pointer[Snapshot]

	initOnce sync.Once
	initErr  error
	initDone atomic.Bool

	mu     sync.Mutex
	cancel func()
	done   chan struct{}
}

// NewStore builds a store over auth. redirectURL is where the OAuth
// provider sends the browser back to; initializer may be nil.
func NewStore(auth client.Auth, initializer UserInitializer, redirectURL string, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop{}
	}
	s := &Store{
		auth:        auth,
		initializer: initializer,
		redirectURL: redirectURL,
		log:         log.With("module", "session"),
	}
	s.snap.Store(&Snapshot{State: StateUninitialized})
	return s
}

func (s *Store) Current() Snapshot {
	return *s.snap.Load()
}

// Initialize looks up the persisted session once. Later calls return the
// first result without touching the backend. On failure the store is
// unauthenticated and the error is returned.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.snap.Store(&Snapshot{State: StateLoading})

		sess, err := s.auth.GetSession(ctx)
		if err != nil {
			s.log.Warn(ctx, "session restore failed", "error", err)
			s.initErr = err
			s.snap.Store(&Snapshot{State: StateUnauthenticated})
			s.initDone.Store(true)
			return
		}
		s.snap.Store(snapshotFor(sess))
		s.initDone.Store(true)
	})
	return s.initErr
}

// Subscribe starts consuming the backend client's auth events. Events are
// applied one at a time in arrival order.
func (s *Store) Subscribe(ctx context.Context) error {
	events, cancel, err := s.auth.Subscribe()
	if err != nil {
		return err
	}

	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		for ev := range events {
			s.apply(ctx, ev)
		}
	}()
	return nil
}

// Teardown unregisters the listener and waits for the consumer to finish
// the event it is handling.
func (s *Store) Teardown() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// apply folds one auth event into the snapshot. INITIAL_SESSION is ignored
// once Initialize has settled the state.
func (s *Store) apply(ctx context.Context, ev models.AuthEvent) {
	s.log.Debug(ctx, "auth event", "type", ev.Type)
	if ev.Type == models.EventInitialSession && s.initDone.Load() {
		return
	}
	s.snap.Store(snapshotFor(ev.Session))

	if ev.Type != models.EventSignedIn || ev.Session == nil || s.initializer == nil {
		return
	}

	userID := ev.Session.UserID()
	if err := s.initializer.InitializeUserDefaults(ctx, ev.Session, userID); err != nil {
		s.log.Error(ctx, "initialize user defaults failed", "user_id", userID, "error", err)
	}
}

// SignIn authenticates with email and password. On failure the state is
// left as it was and the backend error is returned for display.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.snap.Store(snapshotFor(sess))
	s.log.Info(ctx, "signed in", "user_id", sess.UserID())
	return sess, nil
}

// SignUp registers a new account. The store becomes authenticated only
// when the backend issued a session right away.
func (s *Store) SignUp(ctx context.Context, email, password string) (*client.SignUpResult, error) {
	res, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res.Session != nil {
		s.snap.Store(snapshotFor(res.Session))
	}
	return res, nil
}

// BeginOAuth returns the provider authorize URL to open in a browser.
func (s *Store) BeginOAuth(provider string) (string, error) {
	return s.auth.OAuthURL(provider, s.redirectURL, url.Values{"access_type": {"offline"}})
}

// CompleteOAuth finishes a browser flow from the URL the provider
// redirected to. It reports false, with no error and no state change, when
// the URL does not carry both tokens (the user cancelled, for instance).
func (s *Store) CompleteOAuth(ctx context.Context, redirectURL string) (bool, error) {
	pair, ok := ParseRedirect(redirectURL)
	if !ok {
		s.log.Info(ctx, "oauth redirect without tokens")
		return false, nil
	}

	sess, err := s.auth.SetSession(ctx, pair)
	if err != nil {
		return false, err
	}
	s.snap.Store(snapshotFor(sess))
	return true, nil
}

// SignOut always ends unauthenticated. A backend failure is logged only.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.auth.SignOut(ctx); err != nil {
		s.log.Warn(ctx, "sign out incomplete", "error", err)
	}
	s.snap.Store(&Snapshot{State: StateUnauthenticated})
}

// Refresh exchanges the refresh token for a new session. A refused refresh
// token leaves the store unauthenticated; other failures keep the session.
func (s *Store) Refresh(ctx context.Context) (*models.Session, error) {
	if s.Current().Session == nil {
		return nil, client.ErrNoSession
	}

	sess, err := s.auth.RefreshSession(ctx)
	if err != nil {
		if errors.Is(err, client.ErrSessionRevoked) {
			s.log.Info(ctx, "session revoked by backend")
			s.snap.Store(&Snapshot{State: StateUnauthenticated})
		}
		return nil, err
	}
	s.snap.Store(snapshotFor(sess))
	return sess, nil
}
