package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.appointy.com/catalog/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
server:
  address: ":8080"
  timeout: 3s
store:
  seed_file: db.json
web_server:
  host: example.com
  port: 8443
  protocol: https
`), 0o600))

	t.Setenv("CATALOG_SERVER_STRICT_SCHEMA", "true")
	t.Setenv("CATALOG_WEB_SERVER_FOLDER", "public")

	cfg, err := config.LoadConfig(path, nil)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 3*time.Second, cfg.Server.Timeout)
	require.Equal(t, "/graphql", cfg.Server.Path)
	require.True(t, cfg.Server.StrictSchema)
	require.Equal(t, "db.json", cfg.Store.SeedFile)
	require.Equal(t, config.WebServerConfig{Protocol: "https", Host: "example.com", Port: 8443, Folder: "public"}, cfg.WebServer)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := config.LoadConfig(path, nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.URL = "mem://widgets/id"
	require.EqualError(t, cfg.Validate(), "store url must contain {collection}")

	cfg = config.DefaultConfig()
	cfg.Server.Path = "graphql"
	require.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.WebServer.Port = 0
	require.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(-1))
	require.True(t, logger.Core().Enabled(1))
}
