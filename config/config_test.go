package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/agentools/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
store:
  backend: file
  dir: /var/lib/agentools
routes:
  - prefix: backup
    tool: BackupManager
  - prefix: convert
    tool: UnitConverter
`), 0o644))

	cfg, err = config.LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/agentools", cfg.Store.Dir)
	require.Len(t, cfg.Routes, 2)
	assert.Equal(t, "backup", cfg.Routes[0].Prefix)
	assert.Equal(t, "BackupManager", cfg.Routes[0].Tool)

	require.NoError(t, os.WriteFile(file, []byte(`
store:
  backend: cassandra
`), 0o644))
	_, err = config.LoadConfig(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	// route entries are validated too
	require.NoError(t, os.WriteFile(file, []byte(`
store:
  backend: memory
routes:
  - prefix: backup
`), 0o644))
	_, err = config.LoadConfig(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "Tool")
}

func Test_NewStore(t *testing.T) {
	cfg := &config.Config{}
	st, err := cfg.NewStore()
	require.NoError(t, err)
	assert.NotNil(t, st)

	cfg.Store.Backend = config.BackendFile
	_, err = cfg.NewStore()
	assert.EqualError(t, err, "store dir is required for the file backend")

	cfg.Store.Dir = t.TempDir()
	st, err = cfg.NewStore()
	require.NoError(t, err)
	assert.NotNil(t, st)

	cfg = &config.Config{}
	cfg.Store.Backend = config.BackendSQLite
	_, err = cfg.NewStore()
	assert.EqualError(t, err, "store db_path is required for the sqlite backend")

	cfg.Store.DBPath = filepath.Join(t.TempDir(), "documents.db")
	st, err = cfg.NewStore()
	require.NoError(t, err)
	assert.NotNil(t, st)

	cfg = &config.Config{}
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Redis.URL = "not a url"
	_, err = cfg.NewStore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis URL")

	cfg.Store.Redis.URL = "redis://localhost:6379/0"
	st, err = cfg.NewStore()
	require.NoError(t, err)
	assert.NotNil(t, st)
}
