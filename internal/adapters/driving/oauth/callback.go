package oauth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Paths served by the callback server.
const (
	LoginPath    = "/login"
	CallbackPath = "/callback"
)

// ExchangeFunc trades an authorization code for a token.
type ExchangeFunc func(ctx context.Context, code string) (*domain.OAuthToken, error)

// CallbackServer is the loopback server the browser is redirected to.
// It serves once: the first callback with a matching state is delivered
// and later ones are ignored.
type CallbackServer struct {
	port     int
	state    string
	exchange ExchangeFunc

	mu       sync.Mutex
	authURL  string
	listener net.Listener
	server   *http.Server
	messages chan DialogMessage
	once     sync.Once
}

// NewCallbackServer creates a server on the given loopback port; 0 picks a free port.
func NewCallbackServer(port int, state string, exchange ExchangeFunc) *CallbackServer {
	return &CallbackServer{
		port:     port,
		state:    state,
		exchange: exchange,
		messages: make(chan DialogMessage, 1),
	}
}

// Start begins listening. A listener failure is reported as CodePageNotFound.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port)))
	if err != nil {
		logger.Debug("oauth: listen on port %d: %v", s.port, err)
		return &DialogError{Code: CodePageNotFound}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, s.handleLogin)
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	srv := s.server
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Debug("oauth: callback server: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down. Safe to call more than once.
func (s *CallbackServer) Stop() {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Debug("oauth: shutdown callback server: %v", err)
	}
}

// Port returns the bound port.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.port
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// RedirectURI is the callback URL registered with the identity platform.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.Port(), CallbackPath)
}

// LoginURL is the page the browser opens first.
func (s *CallbackServer) LoginURL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.Port(), LoginPath)
}

// SetAuthURL sets where the login page redirects to.
func (s *CallbackServer) SetAuthURL(authURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authURL = authURL
}

// Messages delivers the callback outcome.
func (s *CallbackServer) Messages() <-chan DialogMessage {
	return s.messages
}

func (s *CallbackServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	target := s.authURL
	s.mu.Unlock()
	if target == "" {
		http.Error(w, MessagePageNotFound, http.StatusNotFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("state") != s.state {
		// Stray or replayed request: do not consume the single delivery.
		renderPage(w, http.StatusBadRequest, "Sign-in failed", "The sign-in response did not match this request.")
		return
	}

	if e := q.Get("error"); e != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = e
		}
		s.deliver(DialogMessage{Status: StatusError, Result: desc})
		renderPage(w, http.StatusOK, "Sign-in failed", desc)
		return
	}

	code := q.Get("code")
	if code == "" {
		s.deliver(DialogMessage{Status: StatusError, Result: "no authorization code in response"})
		renderPage(w, http.StatusBadRequest, "Sign-in failed", "No authorization code was returned.")
		return
	}

	token, err := s.exchange(r.Context(), code)
	if err != nil {
		s.deliver(DialogMessage{Status: StatusError, Result: err.Error()})
		renderPage(w, http.StatusOK, "Sign-in failed", err.Error())
		return
	}

	s.deliver(DialogMessage{Status: StatusSuccess, Result: token.AccessToken, token: token})
	renderPage(w, http.StatusOK, "Signed in", "You can close this window and return to shiftsheet.")
}

func (s *CallbackServer) deliver(msg DialogMessage) {
	s.once.Do(func() {
		s.messages <- msg
	})
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>shiftsheet</title></head>
<body style="font-family:sans-serif;margin:3em">
<h2>{{.Title}}</h2>
<p>{{.Body}}</p>
</body></html>
`))

func renderPage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, struct{ Title, Body string }{title, body}); err != nil {
		logger.Debug("oauth: render page: %v", err)
	}
}

// checkRedirect validates a configured redirect URL. Plain http is only
// accepted for loopback hosts.
func checkRedirect(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &DialogError{Code: CodePageNotFound}
	}
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host == "localhost" {
			return nil
		}
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			return nil
		}
		return &DialogError{Code: CodeInsecureURL}
	default:
		return &DialogError{Code: CodePageNotFound}
	}
}
