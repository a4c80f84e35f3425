package port

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRemovalWatcherFiresOnRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ttyUSB0")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := watchRemoval(path, nil)
	require.NoError(t, err)
	t.Cleanup(w.stop)

	// Unrelated entries must not trigger the watcher
	other := filepath.Join(dir, "ttyUSB1")
	require.NoError(t, os.WriteFile(other, nil, 0o644))
	require.NoError(t, os.Remove(other))

	select {
	case <-w.Gone():
		t.Fatal("watcher fired for an unrelated device")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.Remove(path))

	select {
	case <-w.Gone():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for removal notification")
	}
}

func TestRemovalWatcherStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttyACM0")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := watchRemoval(path, nil)
	require.NoError(t, err)
	w.stop()
	w.stop()
}
