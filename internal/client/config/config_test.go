package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Empty(t, c.AccessToken)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_endpoint_addr": "vault.example:9000",
		"access_token":         "from-file",
		"request_timeout":      "5s",
	})

	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		expected *Config
	}{
		{
			name:     "defaults",
			expected: &Config{ServerEndpointAddr: "127.0.0.1:50051", RequestTimeout: 30 * time.Second},
		},
		{
			name:     "json file",
			args:     []string{"-c", path},
			expected: &Config{ServerEndpointAddr: "vault.example:9000", AccessToken: "from-file", RequestTimeout: 5 * time.Second},
		},
		{
			name:     "env overrides file",
			args:     []string{"-config", path},
			env:      map[string]string{EnvAccessToken: "from-env"},
			expected: &Config{ServerEndpointAddr: "vault.example:9000", AccessToken: "from-env", RequestTimeout: 5 * time.Second},
		},
		{
			name:     "flags override everything",
			args:     []string{"-c", path, "-a", "127.0.0.1:7000", "-timeout", "2s", "list"},
			expected: &Config{ServerEndpointAddr: "127.0.0.1:7000", AccessToken: "from-file", RequestTimeout: 2 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.args, env(tt.env))
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

	_, err := Load([]string{"-c", bad}, nil)
	assert.ErrorContains(t, err, "parse config")

	_, err = Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}, nil)
	assert.ErrorContains(t, err, "read config")

	_, err = Load([]string{"-timeout", "soon"}, nil)
	assert.ErrorContains(t, err, "parse flags")
}
