package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/google/uuid"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"

	DefaultTimeout = 30 * time.Second

	mediaJSON   = "application/json"
	mediaObject = "application/vnd.pgrst.object+json"

	maxResponseBytes = 4 << 20
)

var (
	ErrMissingBaseURL = errors.New("backend url is required")
	ErrMissingAPIKey  = errors.New("api key is required")
)

// Options configures an HTTPClient. Zero values get defaults: a
// DefaultTimeout http.Client, in-memory session storage, a no-op logger and
// time.Now.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Storage    SessionStorage
	Logger     logging.Logger
	Now        func() time.Time
}

// HTTPClient talks to the hosted backend's auth and REST endpoints.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	storage SessionStorage
	log     logging.Logger
	now     func() time.Time

	mu       sync.Mutex
	session  *models.Session
	restored bool
	sub      *eventQueue
}

var _ Client = (*HTTPClient)(nil)

func New(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", opts.BaseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		storage: opts.Storage,
		log:     opts.Logger,
		now:     opts.Now,
	}

	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.storage == nil {
		c.storage = NewMemoryStorage()
	}
	if c.log == nil {
		c.log = logging.Nop{}
	}
	c.log = c.log.With("module", "backend")
	if c.now == nil {
		c.now = time.Now
	}

	return c, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`
}

// signUpResponse is a token response when the backend confirms the address
// automatically, and a bare user object otherwise.
type signUpResponse struct {
	tokenResponse
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var tr tokenResponse
	q := url.Values{"grant_type": {"password"}}
	if err := c.do(ctx, http.MethodPost, authPath+"/token", q, "", credentials{email, password}, &tr, nil); err != nil {
		return nil, err
	}

	s, err := c.sessionFromToken(&tr)
	if err != nil {
		return nil, err
	}

	c.setSession(ctx, s, models.EventSignedIn)
	return s, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	var sr signUpResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/signup", nil, "", credentials{email, password}, &sr, nil); err != nil {
		return nil, err
	}

	if sr.AccessToken == "" {
		u := &models.User{ID: sr.ID, Email: sr.Email}
		if sr.User != nil {
			u = &models.User{ID: sr.User.ID, Email: sr.User.Email}
		}
		return &SignUpResult{User: u, VerificationRequired: true}, nil
	}

	s, err := c.sessionFromToken(&sr.tokenResponse)
	if err != nil {
		return nil, err
	}

	c.setSession(ctx, s, models.EventSignedIn)
	return &SignUpResult{User: s.User, Session: s}, nil
}

// OAuthURL builds the provider authorize URL. It performs no request.
func (c *HTTPClient) OAuthURL(provider, redirectTo string, params url.Values) (string, error) {
	if provider == "" {
		return "", errors.New("oauth provider is required")
	}

	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	u := *c.baseURL
	u.Path += authPath + "/authorize"
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SetSession adopts a token pair obtained out of band (the OAuth redirect).
// An already expired access token is exchanged first.
func (c *HTTPClient) SetSession(ctx context.Context, pair models.TokenPair) (*models.Session, error) {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("%w: both tokens are required", common.ErrInvalidToken)
	}

	claims, err := parseClaims(pair.AccessToken)
	if err != nil {
		return nil, err
	}

	exp := claims.expiresAt()
	if exp != 0 && !c.now().Before(time.Unix(exp, 0)) {
		s, err := c.exchange(ctx, pair.RefreshToken)
		if err != nil {
			return nil, err
		}
		c.setSession(ctx, s, models.EventSignedIn)
		return s, nil
	}

	var u userResponse
	if err := c.do(ctx, http.MethodGet, authPath+"/user", nil, pair.AccessToken, nil, &u, nil); err != nil {
		return nil, err
	}

	s := &models.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    exp,
		User:         &models.User{ID: u.ID, Email: u.Email},
	}
	if exp != 0 {
		s.ExpiresIn = exp - c.now().Unix()
	}

	c.setSession(ctx, s, models.EventSignedIn)
	return s, nil
}

// GetSession returns the current session, restoring it from storage on
// first use and refreshing it when the access token has expired. An expired
// session without a refresh token is dropped and common.ErrTokenExpired is
// returned; one whose refresh token is refused is dropped with
// ErrSessionRevoked. (nil, nil) means signed out.
func (c *HTTPClient) GetSession(ctx context.Context) (*models.Session, error) {
	s, err := c.current(ctx)
	if err != nil || s == nil {
		return nil, err
	}

	if s.Expired(c.now()) {
		if s.RefreshToken == "" {
			return nil, errors.Join(common.ErrTokenExpired, c.clearSession(ctx))
		}
		return c.refresh(ctx, s.RefreshToken, models.EventTokenRefreshed)
	}
	return s, nil
}

func (c *HTTPClient) RefreshSession(ctx context.Context) (*models.Session, error) {
	s, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || s.RefreshToken == "" {
		return nil, ErrNoSession
	}
	return c.refresh(ctx, s.RefreshToken, models.EventTokenRefreshed)
}

// SignOut asks the backend to revoke the session, then forgets it locally
// whatever the backend answered. The remote error, if any, is returned.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	s, loadErr := c.current(ctx)

	var remoteErr error
	if s != nil {
		remoteErr = c.do(ctx, http.MethodPost, authPath+"/logout", nil, s.AccessToken, nil, nil, nil)
	}

	return errors.Join(remoteErr, loadErr, c.clearSession(ctx))
}

// Subscribe registers the single auth listener. The first event is
// INITIAL_SESSION, which never carries an expired session; the channel is
// closed after the returned cancel func runs.
func (c *HTTPClient) Subscribe() (<-chan models.AuthEvent, func(), error) {
	c.mu.Lock()
	if c.sub != nil {
		c.mu.Unlock()
		return nil, nil, ErrAlreadySubscribed
	}
	q := newEventQueue()
	c.sub = q
	s := c.session
	c.mu.Unlock()

	if s.Expired(c.now()) {
		s = nil
	}

	q.push(models.AuthEvent{Type: models.EventInitialSession, Session: s})

	cancel := func() {
		c.mu.Lock()
		if c.sub == q {
			c.sub = nil
		}
		c.mu.Unlock()
		q.close()
	}
	return q.out, cancel, nil
}

func (c *HTTPClient) Select(ctx context.Context, sess *models.Session, q *Query, out any) error {
	return c.do(ctx, http.MethodGet, restPath+"/"+q.Table(), q.Values(true), token(sess), nil, out, nil)
}

// SelectSingle expects exactly one row. Zero rows yield an error wrapping
// ErrNotFound.
func (c *HTTPClient) SelectSingle(ctx context.Context, sess *models.Session, q *Query, out any) error {
	hdr := map[string]string{"Accept": mediaObject}
	return c.do(ctx, http.MethodGet, restPath+"/"+q.Table(), q.Values(true), token(sess), nil, out, hdr)
}

// Insert creates one row. When out is non-nil the created row is decoded
// into it.
func (c *HTTPClient) Insert(ctx context.Context, sess *models.Session, table string, row any, out any) error {
	return c.do(ctx, http.MethodPost, restPath+"/"+table, nil, token(sess), row, out, writeHeaders(out))
}

// Update patches the rows matched by q. When out is non-nil exactly one
// row must match and it is decoded into out.
func (c *HTTPClient) Update(ctx context.Context, sess *models.Session, q *Query, patch any, out any) error {
	return c.do(ctx, http.MethodPatch, restPath+"/"+q.Table(), q.Values(out != nil), token(sess), patch, out, writeHeaders(out))
}

func (c *HTTPClient) RPC(ctx context.Context, sess *models.Session, fn string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	return c.do(ctx, http.MethodPost, restPath+"/rpc/"+fn, nil, token(sess), args, out, nil)
}

func writeHeaders(out any) map[string]string {
	if out == nil {
		return map[string]string{"Prefer": "return=minimal"}
	}
	return map[string]string{"Prefer": "return=representation", "Accept": mediaObject}
}

func token(s *models.Session) string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// refresh renews the current session. A refresh token the backend refuses
// ends the session: it is cleared, SIGNED_OUT is emitted and the error wraps
// ErrSessionRevoked. Unavailability leaves the session in place.
func (c *HTTPClient) refresh(ctx context.Context, refreshToken string, ev models.AuthEventType) (*models.Session, error) {
	s, err := c.exchange(ctx, refreshToken)
	if err != nil {
		if rejected(err) {
			c.log.Warn(ctx, "refresh token rejected, dropping session", "error", err)
			return nil, errors.Join(fmt.Errorf("%w: %w", ErrSessionRevoked, err), c.clearSession(ctx))
		}
		return nil, err
	}

	c.setSession(ctx, s, ev)
	return s, nil
}

// exchange trades a refresh token for a new session without touching the
// current one.
func (c *HTTPClient) exchange(ctx context.Context, refreshToken string) (*models.Session, error) {
	var tr tokenResponse
	q := url.Values{"grant_type": {"refresh_token"}}
	if err := c.do(ctx, http.MethodPost, authPath+"/token", q, "", refreshRequest{refreshToken}, &tr, nil); err != nil {
		return nil, err
	}
	return c.sessionFromToken(&tr)
}

func (c *HTTPClient) sessionFromToken(tr *tokenResponse) (*models.Session, error) {
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", common.ErrInvalidToken)
	}

	s := &models.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
		ExpiresAt:    tr.ExpiresAt,
	}
	if tr.User != nil && tr.User.ID != uuid.Nil {
		s.User = &models.User{ID: tr.User.ID, Email: tr.User.Email}
	}
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
	}

	if s.User != nil && s.ExpiresAt != 0 {
		return s, nil
	}

	claims, err := parseClaims(s.AccessToken)
	if err != nil {
		if s.User == nil {
			return nil, err
		}
		return s, nil
	}
	if s.User == nil {
		if s.User, err = claims.user(); err != nil {
			return nil, err
		}
	}
	if s.ExpiresAt == 0 {
		s.ExpiresAt = claims.expiresAt()
	}
	return s, nil
}

// current returns the in-memory session, loading the persisted one once.
func (c *HTTPClient) current(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	if c.restored {
		s := c.session
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	loaded, err := c.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.restored {
		c.session = loaded
		c.restored = true
	}
	return c.session, nil
}

func (c *HTTPClient) setSession(ctx context.Context, s *models.Session, ev models.AuthEventType) {
	c.mu.Lock()
	c.session = s
	c.restored = true
	q := c.sub
	c.mu.Unlock()

	if err := c.storage.Save(ctx, s); err != nil {
		c.log.Warn(ctx, "failed to persist session", "error", err)
	}

	if q != nil {
		q.push(models.AuthEvent{Type: ev, Session: s})
	}
}

func (c *HTTPClient) clearSession(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	c.restored = true
	q := c.sub
	c.mu.Unlock()

	err := c.storage.Clear(ctx)
	if err != nil {
		err = fmt.Errorf("clear stored session: %w", err)
	}

	if q != nil {
		q.push(models.AuthEvent{Type: models.EventSignedOut})
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, bearer string, body any, out any, hdr map[string]string) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	u := *c.baseURL
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}

	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+bearer)
	req.Header.Set("Accept", mediaJSON)
	if body != nil {
		req.Header.Set("Content-Type", mediaJSON)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "backend request failed", "method", method, "path", path, "error", err)
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return mapTransportError(err)
	}

	c.log.Debug(ctx, "backend request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", c.now().Sub(started))

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
