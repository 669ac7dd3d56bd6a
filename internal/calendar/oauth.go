package calendar

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/nhle/agendify/internal/source"
)

// TokenStore persists the Google OAuth token between runs.
type TokenStore interface {
	LoadToken() (*oauth2.Token, error)
	SaveToken(tok *oauth2.Token) error
}

// OAuthConfig returns the OAuth client configuration for the calendar
// events scope.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
}

// GoogleHTTPClient returns an HTTP client authorised with the stored
// token. Refreshed tokens are written back to store.
func GoogleHTTPClient(ctx context.Context, cfg *oauth2.Config, store TokenStore) (*http.Client, error) {
	tok, err := store.LoadToken()
	if err != nil {
		return nil, &source.AuthError{
			SourceType: source.SourceTypeGoogle,
			Message:    fmt.Sprintf("no stored token, run 'agendify calendar login': %v", err),
		}
	}

	ts := &persistingTokenSource{
		base:  cfg.TokenSource(ctx, tok),
		store: store,
		last:  tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// persistingTokenSource saves every newly minted token.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store TokenStore

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		// A failed save is retried on the next refresh.
		if err := s.store.SaveToken(tok); err == nil {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// LoopbackLogin runs the authorization-code flow with PKCE against a
// temporary listener on 127.0.0.1. open is called with the consent URL;
// the function returns once the browser redirects back or ctx ends.
func LoopbackLogin(ctx context.Context, cfg *oauth2.Config, store TokenStore, open func(url string)) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting callback listener: %w", err)
	}
	defer ln.Close()

	flow := *cfg
	flow.RedirectURL = "http://" + ln.Addr().String() + "/callback"

	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	report := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			report(result{err: errors.New("oauth callback state mismatch")})
		case q.Get("error") != "":
			http.Error(w, q.Get("error"), http.StatusBadRequest)
			report(result{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		default:
			fmt.Fprintln(w, "Agendify is authorised. You can close this window.")
			report(result{code: q.Get("code")})
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	open(flow.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)))

	var res result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return res.err
	}

	tok, err := flow.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := store.SaveToken(tok); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}
