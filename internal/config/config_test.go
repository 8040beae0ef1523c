package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "property-feed-service", cfg.App.Name)
	assert.Equal(t, "0 6 * * *", cfg.Schedule.Expression)
	assert.Equal(t, "Europe/Madrid", cfg.Schedule.Timezone)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.Namespaces["properties"])
	assert.Equal(t, 60*time.Minute, cfg.Cache.Namespaces["images"])
	assert.Equal(t, 45*time.Minute, cfg.Cache.Namespaces["campaign-content"])
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
app:
  port: 9090
feed:
  host: ftp.example.com
  dir: /exports
cache:
  backend: redis
  namespaces:
    properties: 15m
schedule:
  expression: "30 5 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "ftp.example.com", cfg.Feed.Host)
	assert.Equal(t, "/exports", cfg.Feed.Dir)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Cache.Namespaces["properties"])
	assert.Equal(t, "30 5 * * *", cfg.Schedule.Expression)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 21, cfg.Feed.Port)
	assert.Equal(t, "Europe/Madrid", cfg.Schedule.Timezone)
}
