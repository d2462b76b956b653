package seeding

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const flaskYAML = `plates:
  - name: T75 flask
    surface_area_cm2: 75
    media_volume_ml: 15
`

func startWatcher(t *testing.T, path string) (*atomic.Pointer[Presets], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)

	var current atomic.Pointer[Presets]
	w := NewWatcher(path, func(p *Presets) { current.Store(p) }, zap.New(core))
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return &current, logs
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plates: []\n"), 0o600))
	current, _ := startWatcher(t, path)

	// Rewrite until the watcher has registered and picked the change up.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(flaskYAML), 0o600); err != nil {
			return false
		}
		p := current.Load()
		if p == nil {
			return false
		}
		_, ok := p.Lookup("T75 flask")
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	assert.Len(t, current.Load().List(), 7)
}

func TestWatcher_KeepsPreviousSetOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plates: []\n"), 0o600))
	current, logs := startWatcher(t, path)

	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte("plates:\n  - name: custom\n    surface_area_cm2: 1\n    media_volume_ml: 1\n"), 0o600); err != nil {
			return false
		}
		return logs.FilterMessage("plate presets reload failed, keeping previous set").Len() > 0
	}, 5*time.Second, 50*time.Millisecond)

	assert.Nil(t, current.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(flaskYAML), 0o600))
	current, logs := startWatcher(t, path)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("watching plate presets").Len() > 0
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, current.Load())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "plates.yaml"), func(*Presets) {}, nil)
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch")
}
