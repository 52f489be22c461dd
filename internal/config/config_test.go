package config

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonghaoch/transaction-service-go/internal/state"
)

func useTempHome(t *testing.T) {
	t.Helper()
	t.Setenv("TRANSACTION_SERVICE_HOME", t.TempDir())
	t.Cleanup(func() { Set(nil) })
}

func TestLoad_CreatesDefault(t *testing.T) {
	useTempHome(t)

	require.NoError(t, Load())

	cfg := Get()
	assert.Equal(t, DefaultMaxBodyBytes, cfg.MaxBodyBytes)
	assert.Equal(t, 0, cfg.MaxTransactions)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.FileExists(t, state.ConfigPath())
}

func TestLoad_ReadsFile(t *testing.T) {
	useTempHome(t)

	data, err := json.Marshal(map[string]any{
		"auth":            map[string]any{"apiKeys": []string{" k1 ", "k2", "k1", ""}},
		"maxBodyBytes":    2048,
		"maxTransactions": 10,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(state.ConfigPath(), data, 0600))

	require.NoError(t, Load())

	cfg := Get()
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, 10, cfg.MaxTransactions)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"k1", "k2"}, GetAPIKeys())
}

func TestLoad_InvalidFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"maxBodyBytes": `},
		{"negative limit", `{"maxTransactions": -1}`},
		{"zero body size", `{"maxBodyBytes": 0}`},
		{"empty origin", `{"cors": {"allowedOrigins": [""]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useTempHome(t)
			require.NoError(t, os.WriteFile(state.ConfigPath(), []byte(tt.body), 0600))

			require.NoError(t, Load())
			assert.Equal(t, Default(), Get())
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.MaxBodyBytes = 0
	assert.Error(t, cfg.Validate())
}

func TestAddAPIKeys(t *testing.T) {
	useTempHome(t)
	Set(Default())

	AddAPIKeys("cli-key")
	AddAPIKeys()

	assert.Equal(t, []string{"cli-key"}, GetAPIKeys())
	assert.Empty(t, Default().Auth.APIKeys)
}

func TestGet_WithoutLoad(t *testing.T) {
	Set(nil)
	assert.Equal(t, Default(), Get())
	assert.Empty(t, GetAPIKeys())
}
