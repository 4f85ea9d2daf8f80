// Package auth runs the OAuth authorization-code flow against GitHub or
// Google from the terminal: build the redirect URL, receive the callback on a
// loopback listener, and exchange the code for a token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
	oauthgoogle "golang.org/x/oauth2/google"

	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/pkg/randid"
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrNotConfigured   = errors.New("identity provider has no client id")
	ErrStateMismatch   = errors.New("oauth state mismatch")
	ErrDenied          = errors.New("authorization denied")
)

// Result is delivered once the callback has been handled.
type Result struct {
	Provider string
	Token    *oauth2.Token
	Err      error
}

// SignIn holds one oauth2.Config per configured provider.
type SignIn struct {
	callbackURL string
	configs     map[string]*oauth2.Config
	httpClient  *http.Client
	newState    func() string
	logger      zerolog.Logger
}

// Option configures SignIn.
type Option func(*SignIn)

// WithEndpoint overrides the OAuth endpoint of a provider.
func WithEndpoint(provider string, ep oauth2.Endpoint) Option {
	return func(s *SignIn) {
		if c, ok := s.configs[provider]; ok {
			c.Endpoint = ep
		}
	}
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *SignIn) { s.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *SignIn) { s.logger = l }
}

func endpointFor(provider string) (oauth2.Endpoint, bool) {
	switch provider {
	case config.ProviderGitHub:
		return oauthgithub.Endpoint, true
	case config.ProviderGoogle:
		return oauthgoogle.Endpoint, true
	default:
		return oauth2.Endpoint{}, false
	}
}

// New builds a SignIn from the auth section of the config.
func New(cfg config.AuthConfig, opts ...Option) *SignIn {
	s := &SignIn{
		callbackURL: cfg.CallbackURL,
		configs:     make(map[string]*oauth2.Config),
		newState:    randid.State,
		logger:      zerolog.Nop(),
	}

	for name, p := range cfg.Providers {
		ep, ok := endpointFor(name)
		if !ok {
			continue
		}
		s.configs[name] = &oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       p.Scopes,
			Endpoint:     ep,
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the providers that have a client id, sorted by name.
func (s *SignIn) Providers() []string {
	var out []string
	for name, c := range s.configs {
		if c.ClientID != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *SignIn) config(provider string) (*oauth2.Config, error) {
	c, ok := s.configs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if c.ClientID == "" {
		return nil, fmt.Errorf("%w: %s (set REPOZA_%s_CLIENT_ID)", ErrNotConfigured, provider, envName(provider))
	}
	return c, nil
}

// AuthURL returns the provider redirect URL and the random state it carries.
func (s *SignIn) AuthURL(provider string) (string, string, error) {
	c, err := s.config(provider)
	if err != nil {
		return "", "", err
	}
	state := s.newState()
	return c.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// CallbackHandler validates the state on the redirect back from the provider
// and exchanges the code. Requests without the expected state, such as a
// browser prefetch or a stray local request, are answered with 400 and
// otherwise ignored so the real redirect can still arrive. Exactly one
// Result is sent on done.
func (s *SignIn) CallbackHandler(provider, state string, done chan<- Result) http.Handler {
	delivered := make(chan struct{}, 1)
	deliver := func(r Result) {
		select {
		case delivered <- struct{}{}:
			done <- r
		default:
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if !randid.Match(state, q.Get("state")) {
			s.logger.Debug().Str("path", r.URL.Path).Msg("ignoring callback with unexpected state")
			writePage(w, http.StatusBadRequest, "This sign-in link does not belong to the pending request.")
			return
		}

		if e := q.Get("error"); e != "" {
			err := fmt.Errorf("%w: %s", ErrDenied, e)
			writePage(w, http.StatusForbidden, "Sign-in was cancelled. You can close this tab.")
			deliver(Result{Provider: provider, Err: err})
			return
		}

		tok, err := s.Exchange(r.Context(), provider, q.Get("code"))
		if err != nil {
			writePage(w, http.StatusBadGateway, "Sign-in failed. Check the terminal for details.")
			deliver(Result{Provider: provider, Err: err})
			return
		}

		writePage(w, http.StatusOK, "Signed in. You can close this tab and return to the terminal.")
		deliver(Result{Provider: provider, Token: tok})
	})
}

// CodeFromPaste extracts the authorization code from what a user pasted: the
// whole redirect URL, or only the code. A pasted URL must carry the expected
// state.
func CodeFromPaste(pasted, state string) (string, error) {
	pasted = strings.TrimSpace(pasted)
	u, err := url.Parse(pasted)
	if err != nil || u.RawQuery == "" {
		return pasted, nil
	}

	q := u.Query()
	if !q.Has("code") && !q.Has("error") {
		return pasted, nil
	}
	if !randid.Match(state, q.Get("state")) {
		return "", ErrStateMismatch
	}
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("%w: %s", ErrDenied, e)
	}
	return q.Get("code"), nil
}

// Exchange trades an authorization code for a token.
func (s *SignIn) Exchange(ctx context.Context, provider, code string) (*oauth2.Token, error) {
	c, err := s.config(provider)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.New("callback carried no code")
	}
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	tok, err := c.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code with %s: %w", provider, err)
	}
	return tok, nil
}

// Listen serves the callback on the host and path of the configured callback
// URL until one callback arrives or ctx is done.
func (s *SignIn) Listen(ctx context.Context, provider, state string) (Result, error) {
	u, err := url.Parse(s.callbackURL)
	if err != nil {
		return Result{}, fmt.Errorf("parse callback url: %w", err)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	done := make(chan Result, 1)
	mux := http.NewServeMux()
	mux.Handle(path, s.CallbackHandler(provider, state, done))

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return Result{}, fmt.Errorf("listen on %s: %w", u.Host, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Debug().Str("addr", u.Host).Str("path", path).Msg("waiting for oauth callback")

	select {
	case r := <-done:
		return r, r.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func writePage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "<!doctype html><title>repoza</title><p>%s</p>", html.EscapeString(msg))
}

func envName(provider string) string {
	return strings.ToUpper(provider)
}
