package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetState() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	logsDir = ""
	debugMode = false
	logLevel = LevelInfo
}

func TestInitializeDisabledIsNoOp(t *testing.T) {
	t.Cleanup(resetState)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, false, "info"))
	Store("this should go nowhere")

	_, err := os.Stat(filepath.Join(dir, "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir must not be created in production mode")
}

func TestInitializeDebugWritesFiles(t *testing.T) {
	t.Cleanup(resetState)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, true, "debug"))
	Deck("created presentation %s", "abc")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestLevelFiltering(t *testing.T) {
	t.Cleanup(resetState)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, true, "error"))
	l := Get(CategoryServer)
	l.Info("filtered")
	l.Error("kept")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)

	var total int64
	for _, e := range entries {
		info, err := e.Info()
		require.NoError(t, err)
		total += info.Size()
	}
	assert.Greater(t, total, int64(0))
}
