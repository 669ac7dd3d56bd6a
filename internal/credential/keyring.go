// Package credential keeps agendify's secrets in the OS keyring.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"
)

const serviceName = "agendify"

// Keys under which secrets are stored.
const (
	KeyIMAPPassword    = "imap_password"
	KeyCalDAVPassword  = "caldav_password"
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyGoogleToken     = "google_oauth_token"
)

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = errors.New("credential not found")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/agendify/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("agendify-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Vault reads and writes secrets in a keyring.
type Vault struct {
	ring   keyring.Keyring
	getenv func(string) string
}

// Open returns a Vault over the system keyring.
func Open() (*Vault, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewVault(ring), nil
}

// NewVault wraps an existing keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring, getenv: os.Getenv}
}

// Get retrieves a credential value by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "agendify " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Deleting a missing key is not
// an error.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// APIKey returns the model service key for provider ("anthropic" or
// "openai"). ANTHROPIC_API_KEY / OPENAI_API_KEY take precedence over
// the keyring.
func (v *Vault) APIKey(provider string) (string, error) {
	var env, key string
	switch provider {
	case "anthropic":
		env, key = "ANTHROPIC_API_KEY", KeyAnthropicAPIKey
	case "openai":
		env, key = "OPENAI_API_KEY", KeyOpenAIAPIKey
	default:
		return "", fmt.Errorf("unknown model provider %q", provider)
	}

	if s := v.getenv(env); s != "" {
		return s, nil
	}
	return v.Get(key)
}

// LoadToken returns the stored Google OAuth token.
func (v *Vault) LoadToken() (*oauth2.Token, error) {
	raw, err := v.Get(KeyGoogleToken)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decoding stored token: %w", err)
	}
	return &tok, nil
}

// SaveToken stores tok, replacing any previous token.
func (v *Vault) SaveToken(tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return v.Set(KeyGoogleToken, string(raw))
}
