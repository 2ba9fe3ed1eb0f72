package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
instance:
  fqdn: seabird.example.com
  name: Seabird
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Listen)
	assert.Equal(t, "seabird.example.com", cfg.WebAuthn.RPID)
	assert.Equal(t, "Seabird", cfg.WebAuthn.RPDisplayName)
	assert.Equal(t, []string{"https://seabird.example.com"}, cfg.WebAuthn.RPOrigins)
	assert.Equal(t, 10*time.Second, cfg.Federation.FetchTimeout())
}

func TestLoadFederationTimeout(t *testing.T) {
	path := writeConfig(t, `
instance:
  fqdn: seabird.example.com
federation:
  fetchTimeoutSeconds: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Federation.FetchTimeout())
}

func TestLoadRequiresFQDN(t *testing.T) {
	path := writeConfig(t, `
instance:
  name: Seabird
`)

	_, err := Load(path)
	assert.Error(t, err)
}
