package client

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

// Auth is the authentication half of the backend. The implementation owns
// the device's single session and reports changes to it as AuthEvents.
type Auth interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*SignUpResult, error)
	OAuthURL(provider, redirectTo string, params url.Values) (string, error)
	SetSession(ctx context.Context, pair models.TokenPair) (*models.Session, error)
	GetSession(ctx context.Context) (*models.Session, error)
	RefreshSession(ctx context.Context) (*models.Session, error)
	SignOut(ctx context.Context) error
	Subscribe() (<-chan models.AuthEvent, func(), error)
}

// Data is the table and RPC half of the backend. Every call carries the
// caller's session explicitly; a nil session sends the project key only.
type Data interface {
	Select(ctx context.Context, sess *models.Session, q *Query, out any) error
	SelectSingle(ctx context.Context, sess *models.Session, q *Query, out any) error
	Insert(ctx context.Context, sess *models.Session, table string, row any, out any) error
	Update(ctx context.Context, sess *models.Session, q *Query, patch any, out any) error
	RPC(ctx context.Context, sess *models.Session, fn string, args any, out any) error
}

type Client interface {
	Auth
	Data
}

// SignUpResult is what a registration produced. Session is nil when the
// backend requires the address to be confirmed first.
type SignUpResult struct {
	User                 *models.User
	Session              *models.Session
	VerificationRequired bool
}
