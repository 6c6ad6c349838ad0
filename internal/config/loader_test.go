package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/config"
)

const configYAML = `
application:
  name: tenancy
logger:
  level: info
  format: json
tenancy:
  fallback: none
  allowUnresolved: false
storage:
  baseDir: /data
cache:
  type: none
`

func TestLoadConfig(t *testing.T) {
	t.Run("Should load config", func(t *testing.T) {
		dir := t.TempDir()
		err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o600)
		require.NoError(t, err)

		cfg, err := config.LoadConfig(commoncfg.WithPaths(dir))
		require.NoError(t, err)

		assert.Equal(t, config.FallbackNone, cfg.Tenancy.Fallback)
		assert.False(t, cfg.Tenancy.AllowUnresolved)
		assert.Equal(t, "/data", cfg.Storage.BaseDir)
		assert.Equal(t, config.CacheNone, cfg.Cache.Type)
		assert.Equal(t, 5*time.Second, cfg.Connections.ActivationTimeout)
	})

	t.Run("Should fail on invalid values", func(t *testing.T) {
		dir := t.TempDir()
		err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("cache:\n  type: memcached\n"), 0o600)
		require.NoError(t, err)

		_, err = config.LoadConfig(commoncfg.WithPaths(dir))
		assert.Error(t, err)
	})
}
