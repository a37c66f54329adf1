package commons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Flattens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
jwt:
  secret: s3cret
LOG_LEVEL: warn
`), 0o600))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, got["SERVER_PORT"])
	assert.Equal(t, "s3cret", got["JWT_SECRET"])
	assert.Equal(t, "warn", got["LOG_LEVEL"])
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
