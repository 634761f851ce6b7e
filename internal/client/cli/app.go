package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/config"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/oauth"
	"github.com/dmitrijs2005/healthkeeper/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
	"github.com/dmitrijs2005/healthkeeper/internal/client/session"
	"github.com/dmitrijs2005/healthkeeper/internal/filex"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/google/uuid"
)

// oauthTimeout bounds how long the CLI waits for the browser to come back.
const oauthTimeout = 5 * time.Minute

// sessionStore is the part of session.Store the commands use.
type sessionStore interface {
	Current() session.Snapshot
	Initialize(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Teardown()
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*client.SignUpResult, error)
	BeginOAuth(provider string) (string, error)
	CompleteOAuth(ctx context.Context, redirectURL string) (bool, error)
	SignOut(ctx context.Context)
	Refresh(ctx context.Context) (*models.Session, error)
}

// authorizeFunc opens authURL and returns the URL the provider redirected to.
type authorizeFunc func(ctx context.Context, authURL string) (string, error)

type App struct {
	config    *config.Config
	store     sessionStore
	data      services.DataService
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	authorize authorizeFunc
	db        *sql.DB
	now       func() time.Time

	mu          sync.Mutex
	tracker     *services.HydrationTracker
	trackerUser uuid.UUID
	trackerDay  string
}

// NewApp opens the local session database and wires the backend client,
// session store and data service from c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	path, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", path, "error", err)
		return nil, err
	}

	storage, err := sessions.NewSealedStorage(db, c.SealingSecret())
	if err != nil {
		db.Close()
		return nil, err
	}

	backend, err := client.New(client.Options{
		BaseURL: c.BackendURL,
		APIKey:  c.AnonKey,
		Timeout: c.RequestTimeout,
		Storage: storage,
		Logger:  log,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	data := services.NewDataService(backend, log, nil)
	store := session.NewStore(backend, data, c.RedirectURL, log)

	a := newApp(c, store, data, log, os.Stdin, os.Stdout)
	a.db = db
	a.authorize = browserAuthorizer(c.RedirectURL, log)
	return a, nil
}

func newApp(c *config.Config, store sessionStore, data services.DataService, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop{}
	}
	return &App{
		config: c,
		store:  store,
		data:   data,
		log:    log.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}
}

// browserAuthorizer runs one OAuth round trip through a loopback receiver
// bound to redirectURL.
func browserAuthorizer(redirectURL string, log logging.Logger) authorizeFunc {
	return func(ctx context.Context, authURL string) (string, error) {
		r, err := oauth.NewReceiver(redirectURL, log)
		if err != nil {
			return "", err
		}
		defer r.Close(context.Background())

		ctx, cancel := context.WithTimeout(ctx, oauthTimeout)
		defer cancel()
		return oauth.Authorize(ctx, r, authURL)
	}
}

// Run starts the REPL and releases local resources when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Current().Session != nil
}

// currentSession returns the signed-in session and its user id, telling the
// user to log in when there is none.
func (a *App) currentSession() (*models.Session, uuid.UUID, error) {
	sess := a.store.Current().Session
	if sess == nil {
		fmt.Fprintln(a.out, "Please login first")
		return nil, uuid.Nil, client.ErrNoSession
	}
	return sess, sess.UserID(), nil
}

// report shows a failed action to the user, preferring the backend's own
// message, and returns err unchanged.
func (a *App) report(action string, err error) error {
	msg := err.Error()
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	fmt.Fprintf(a.out, "%s failed: %s\n", action, msg)
	return err
}
