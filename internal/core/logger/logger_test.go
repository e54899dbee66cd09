package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"bookmarks-api/internal/core/config"
)

func TestFromConfigWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "api.log")
	l, cleanup := FromConfig(config.Log{
		Level: "info",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("bookmark created")
	l.Debug("dropped by level")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "bookmark created")
	assert.NotContains(t, string(b), "dropped by level")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("nonsense", true)
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestToStdLogger(t *testing.T) {
	l, cleanup := New("debug", false)
	defer cleanup()
	std := ToStdLogger(l, zapcore.WarnLevel)
	require.NotNil(t, std)
	std.Printf("hello %s", "gorm")
}
