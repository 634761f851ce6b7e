// Package oauth receives the browser redirect at the end of a provider
// sign-in. The backend puts the tokens in the URL fragment, which browsers
// never send to a server, so the callback page forwards the fragment back
// as a query parameter.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"
)

// openBrowser is swapped in tests.
var openBrowser = browser.OpenURL

const fragmentParam = "fragment"

var ErrInvalidRedirect = errors.New("redirect url must be http://host:port/path")

var forwardPage = template.Must(template.New("forward").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>healthkeeper</title></head>
<body>
<p id="msg">Completing sign-in...</p>
<script>
var hash = window.location.hash ? window.location.hash.substring(1) : "";
window.location.replace({{.Path}} + "?{{.Param}}=" + encodeURIComponent(hash));
</script>
</body></html>
`))

const donePage = `<!doctype html>
<html><head><meta charset="utf-8"><title>healthkeeper</title></head>
<body><p>Sign-in finished. You can close this window and return to the terminal.</p></body></html>
`

// Receiver is a one-shot HTTP listener on the loopback redirect address.
type Receiver struct {
	redirectURL string
	path        string
	log         logging.Logger

	result chan string
	once   sync.Once

	ln  net.Listener
	srv *http.Server
}

func NewReceiver(redirectURL string, log logging.Logger) (*Receiver, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRedirect, err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return nil, ErrInvalidRedirect
	}
	if log == nil {
		log = logging.Nop{}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	r := &Receiver{
		redirectURL: (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String(),
		path:        path,
		log:         log.With("module", "oauth"),
		result:      make(chan string, 1),
	}

	router := chi.NewRouter()
	router.Use(middleware.NoCache)
	router.Use(middleware.Recoverer)
	router.Get(path, r.handleCallback)

	r.srv = &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	r.ln, err = net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", u.Host, err)
	}

	go func() {
		if err := r.srv.Serve(r.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error(context.Background(), "callback server stopped", "error", err)
		}
	}()

	return r, nil
}

// Addr is the address actually listened on.
func (r *Receiver) Addr() string {
	return r.ln.Addr().String()
}

func (r *Receiver) handleCallback(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	switch {
	case q.Has(fragmentParam):
		redirect := r.redirectURL
		if f := q.Get(fragmentParam); f != "" {
			redirect += "#" + f
		}
		r.deliver(redirect)
	case q.Has("error"):
		r.log.Info(req.Context(), "provider returned an error", "error", q.Get("error"))
		r.deliver(r.redirectURL)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = forwardPage.Execute(w, struct{ Path, Param string }{r.path, fragmentParam})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(donePage))
}

func (r *Receiver) deliver(redirect string) {
	r.once.Do(func() { r.result <- redirect })
}

// Wait blocks until the browser comes back and returns the redirect URL
// with its fragment restored.
func (r *Receiver) Wait(ctx context.Context) (string, error) {
	select {
	case u := <-r.result:
		return u, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Receiver) Close(ctx context.Context) error {
	return r.srv.Shutdown(ctx)
}

// Authorize opens authURL in the system browser and waits for the
// redirect to reach r. When no browser can be started the URL is logged
// so it can be opened by hand.
func Authorize(ctx context.Context, r *Receiver, authURL string) (string, error) {
	if err := openBrowser(authURL); err != nil {
		r.log.Warn(ctx, "could not open browser", "url", authURL, "error", err)
	}
	return r.Wait(ctx)
}
