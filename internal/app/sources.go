package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/nhle/agendify/internal/ai"
	"github.com/nhle/agendify/internal/calendar"
	"github.com/nhle/agendify/internal/credential"
	"github.com/nhle/agendify/internal/extract"
	"github.com/nhle/agendify/internal/review"
	"github.com/nhle/agendify/internal/source/email"
)

// IMAP returns the configured IMAP mailbox, loading the password from
// the keyring.
func (a *App) IMAP() (*email.Adapter, error) {
	cfg := a.Config.Mail
	if cfg.IMAPHost == "" || cfg.Username == "" {
		return nil, errors.New("mail is not configured: set mail.imap_host and mail.username")
	}

	password, err := a.Vault.Get(credential.KeyIMAPPassword)
	if err != nil {
		return nil, fmt.Errorf("loading IMAP password (run 'agendify auth set imap'): %w", err)
	}

	return email.NewAdapter(
		cfg.IMAPHost, cfg.IMAPPort,
		cfg.Username, password,
		cfg.TLS, cfg.Mailbox, cfg.MaxResults,
	), nil
}

// buildCompleter creates the model service client for the configured
// provider.
func (a *App) buildCompleter() (extract.Completer, error) {
	cfg := a.Config.AI
	key, err := a.Vault.APIKey(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("loading %s API key: %w", cfg.Provider, err)
	}

	return ai.NewCompleter(ai.Config{
		Provider:          ai.Provider(cfg.Provider),
		APIKey:            key,
		Model:             cfg.Model,
		MaxTokens:         cfg.MaxTokens,
		BaseURL:           cfg.BaseURL,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
}

// CalDAV returns the configured CalDAV calendar.
func (a *App) CalDAV() (*calendar.CalDAV, error) {
	cfg := a.Config.Calendar
	if cfg.CalDAVURL == "" {
		return nil, errors.New("CalDAV is not configured: set calendar.caldav_url")
	}

	password, err := a.Vault.Get(credential.KeyCalDAVPassword)
	if err != nil {
		return nil, fmt.Errorf("loading CalDAV password (run 'agendify auth set caldav'): %w", err)
	}

	return calendar.NewCalDAV(cfg.CalDAVURL, cfg.CalDAVUsername, password, cfg.CalendarPath), nil
}

// GoogleOAuth returns the OAuth client configuration for Google
// Calendar.
func (a *App) GoogleOAuth() (*oauth2.Config, error) {
	cfg := a.Config.Calendar
	if cfg.GoogleClientID == "" {
		return nil, errors.New("google calendar is not configured: set calendar.google_client_id")
	}
	return calendar.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, ""), nil
}

// buildCalendar connects to the configured calendar backend.
func (a *App) buildCalendar(ctx context.Context) (review.Calendar, error) {
	switch a.Config.Calendar.Provider {
	case "caldav", "":
		return a.CalDAV()
	case "google":
		oauthCfg, err := a.GoogleOAuth()
		if err != nil {
			return nil, err
		}
		// The client outlives this call and refreshes tokens on its own.
		client, err := calendar.GoogleHTTPClient(context.WithoutCancel(ctx), oauthCfg, a.Vault)
		if err != nil {
			return nil, err
		}
		return calendar.NewGoogle(ctx, client, a.Config.Calendar.GoogleCalendarID)
	default:
		return nil, fmt.Errorf("unknown calendar provider %q", a.Config.Calendar.Provider)
	}
}
