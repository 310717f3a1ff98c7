package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := newLogger(path, "debug")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	l.Info("forest trained", zap.Int("trees", 3))
	_ = l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"forest trained"`)
	assert.Contains(t, string(b), `"trees":3`)
}

func TestNewLoggerLevel(t *testing.T) {
	assert.False(t, newLogger("", "warn").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, newLogger("", "bogus").Core().Enabled(zapcore.InfoLevel))
	assert.Same(t, Logger(), Logger())
}
