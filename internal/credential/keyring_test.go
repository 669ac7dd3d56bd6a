package credential

import (
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestVault(env map[string]string) *Vault {
	v := NewVault(keyring.NewArrayKeyring(nil))
	v.getenv = func(k string) string { return env[k] }
	return v
}

func TestVault_SetGetDelete(t *testing.T) {
	v := newTestVault(nil)

	_, err := v.Get(KeyIMAPPassword)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, v.Set(KeyIMAPPassword, "hunter2"))
	got, err := v.Get(KeyIMAPPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, v.Delete(KeyIMAPPassword))
	require.NoError(t, v.Delete(KeyIMAPPassword))
	_, err = v.Get(KeyIMAPPassword)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVault_APIKey(t *testing.T) {
	v := newTestVault(map[string]string{"OPENAI_API_KEY": "sk-env"})
	require.NoError(t, v.Set(KeyAnthropicAPIKey, "sk-ant-ring"))
	require.NoError(t, v.Set(KeyOpenAIAPIKey, "sk-ring"))

	got, err := v.APIKey("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-ring", got)

	got, err = v.APIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", got)

	_, err = v.APIKey("mistral")
	assert.Error(t, err)
}

func TestVault_Token(t *testing.T) {
	v := newTestVault(nil)

	_, err := v.LoadToken()
	assert.ErrorIs(t, err, ErrNotFound)

	expiry := time.Date(2025, time.August, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, v.SaveToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))

	tok, err := v.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}
