package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	t.Setenv("BOT_BACKEND_URL", "http://backend.local/api")

	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 3, c.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, c.RetryDelay)
	assert.Equal(t, "fixed", c.RetryBackoff)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", GetSolanaRPCURL())
	assert.Empty(t, GetEventFeedURL())
}

func TestInitRequiresBackend(t *testing.T) {
	t.Setenv("BOT_BACKEND_URL", "")
	require.NoError(t, os.Unsetenv("BOT_BACKEND_URL"))

	err := Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_BACKEND_URL")
}

func TestInitRejectsZeroAttempts(t *testing.T) {
	t.Setenv("BOT_BACKEND_URL", "http://backend.local/api")
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")

	err := Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRY_MAX_ATTEMPTS")
}

func TestPassphraseFromEnv(t *testing.T) {
	t.Setenv("BOT_BACKEND_URL", "http://backend.local/api")
	t.Setenv("STORE_PASSPHRASE", "dev")
	t.Cleanup(func() { passphraseBytes = nil })

	require.NoError(t, Init())
	require.NoError(t, PromptForPassphrase())

	p, err := GetStorePassphraseBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("dev"), p)

	// returned slice is a copy
	clear(p)
	again, err := GetStorePassphraseBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("dev"), again)
}

func TestLoadTurnkeyToolWithoutBackend(t *testing.T) {
	t.Setenv("BOT_BACKEND_URL", "")
	require.NoError(t, os.Unsetenv("BOT_BACKEND_URL"))
	t.Setenv("TURNKEY_ORGANIZATION_ID", "org-1")
	t.Setenv("TURNKEY_API_PUBLIC_KEY", "02aa")
	t.Setenv("TURNKEY_API_PRIVATE_KEY", "bb")
	t.Setenv("HTTP_TIMEOUT", "7s")

	c, err := LoadTurnkeyTool()
	require.NoError(t, err)
	assert.Equal(t, "org-1", c.TurnkeyOrgID)
	assert.Equal(t, "https://api.turnkey.com", c.TurnkeyAPIURL)
	assert.Equal(t, 7*time.Second, c.HTTPTimeout)
}

func TestLoadTurnkeyToolRequiresCredential(t *testing.T) {
	t.Setenv("TURNKEY_ORGANIZATION_ID", "org-1")
	t.Setenv("TURNKEY_API_PUBLIC_KEY", "")
	t.Setenv("TURNKEY_API_PRIVATE_KEY", "")

	_, err := LoadTurnkeyTool()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TURNKEY_API_PUBLIC_KEY")
}
