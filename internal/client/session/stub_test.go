package session

import (
	"context"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/google/uuid"
)

// stubAuth is a scripted client.Auth. Zero fields mean success with no
// session.
type stubAuth struct {
	mu sync.Mutex

	getSession     *models.Session
	getSessionErr  error
	getSessionHits int

	signIn    *models.Session
	signInErr error

	signUp    *client.SignUpResult
	signUpErr error

	setSession    *models.Session
	setSessionErr error
	setSessionIn  []models.TokenPair

	refresh    *models.Session
	refreshErr error

	signOutErr  error
	signOutHits int

	oauthProvider string
	oauthRedirect string
	oauthParams   url.Values

	events chan models.AuthEvent
}

var _ client.Auth = (*stubAuth)(nil)

func (a *stubAuth) SignInWithPassword(context.Context, string, string) (*models.Session, error) {
	return a.signIn, a.signInErr
}

func (a *stubAuth) SignUp(context.Context, string, string) (*client.SignUpResult, error) {
	return a.signUp, a.signUpErr
}

func (a *stubAuth) OAuthURL(provider, redirectTo string, params url.Values) (string, error) {
	a.oauthProvider, a.oauthRedirect, a.oauthParams = provider, redirectTo, params
	return "https://backend.test/auth/v1/authorize?provider=" + provider, nil
}

func (a *stubAuth) SetSession(_ context.Context, pair models.TokenPair) (*models.Session, error) {
	a.mu.Lock()
	a.setSessionIn = append(a.setSessionIn, pair)
	a.mu.Unlock()
	return a.setSession, a.setSessionErr
}

func (a *stubAuth) GetSession(context.Context) (*models.Session, error) {
	a.mu.Lock()
	a.getSessionHits++
	a.mu.Unlock()
	return a.getSession, a.getSessionErr
}

func (a *stubAuth) RefreshSession(context.Context) (*models.Session, error) {
	return a.refresh, a.refreshErr
}

func (a *stubAuth) SignOut(context.Context) error {
	a.signOutHits++
	return a.signOutErr
}

func (a *stubAuth) Subscribe() (<-chan models.AuthEvent, func(), error) {
	if a.events != nil {
		return nil, nil, client.ErrAlreadySubscribed
	}
	a.events = make(chan models.AuthEvent, 16)
	var once sync.Once
	return a.events, func() { once.Do(func() { close(a.events) }) }, nil
}

type initCall struct {
	userID uuid.UUID
	token  string
}

type stubInitializer struct {
	mu    sync.Mutex
	calls []initCall
	err   error
}

func (i *stubInitializer) InitializeUserDefaults(_ context.Context, sess *models.Session, userID uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls = append(i.calls, initCall{userID: userID, token: sess.AccessToken})
	return i.err
}

func (i *stubInitializer) Calls() []initCall {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]initCall(nil), i.calls...)
}

func newSession(email string) *models.Session {
	return &models.Session{
		AccessToken:  "access-" + email,
		RefreshToken: "refresh-" + email,
		User:         &models.User{ID: uuid.New(), Email: email},
	}
}
