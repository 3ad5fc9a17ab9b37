package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsAndDurations(t *testing.T) {
	t.Setenv("CUSTODIAL_WIF", "5JWIFdeprueba")

	path := writeYAML(t, `
ledger:
  node_url: https://node.example.org
custodial:
  account: plataforma
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, 7*24*time.Hour, c.AccessTTL())
	assert.Equal(t, 10*time.Minute, c.ChallengeTTL())
	// Sin relay propio, el relay es el nodo.
	assert.Equal(t, "https://node.example.org", c.Ledger.RelayURL)
	assert.Equal(t, "5JWIFdeprueba", c.Custodial.WIF)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CUSTODIAL_WIF", "5Jotro")
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("LEDGER_NODE_URL", "https://env.example.org")
	t.Setenv("TOKEN_ACCESS_TTL", "24h")

	path := writeYAML(t, `
server:
  addr: ":8080"
ledger:
  node_url: https://yaml.example.org
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", c.Server.Addr)
	assert.Equal(t, "https://env.example.org", c.Ledger.NodeURL)
	assert.Equal(t, 24*time.Hour, c.AccessTTL())
}

func TestValidateRejectsMissingWIF(t *testing.T) {
	t.Setenv("CUSTODIAL_WIF", "")

	path := writeYAML(t, `
ledger:
  node_url: https://node.example.org
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "CUSTODIAL_WIF")
}

func TestValidateRejectsPostgresSinDSN(t *testing.T) {
	t.Setenv("CUSTODIAL_WIF", "5Jalgo")

	path := writeYAML(t, `
ledger:
  node_url: https://node.example.org
storage:
  driver: postgres
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "storage.dsn")
}
