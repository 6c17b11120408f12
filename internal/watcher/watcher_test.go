package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatch(t *testing.T, path string) (*atomic.Int32, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, quietLogger(), func() { calls.Add(1) })
	}()
	eventually(t, 2*time.Second, 10*time.Millisecond, func() bool { return calls.Load() >= 1 },
		"initial callback never fired")
	stop := func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Watch returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Watch did not stop after cancel")
		}
	}
	return &calls, stop
}

func TestWatch_FileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	_ = os.WriteFile(path, []byte("[]"), 0o644)

	calls, stop := startWatch(t, path)
	defer stop()

	_ = os.WriteFile(path, []byte("[ ]"), 0o644)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool { return calls.Load() >= 2 },
		"write did not trigger callback")
}

func TestWatch_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	_ = os.WriteFile(path, []byte("[]"), 0o644)

	calls, stop := startWatch(t, path)
	defer stop()

	tmp := filepath.Join(dir, ".tasks-tmp-1")
	_ = os.WriteFile(tmp, []byte("[ ]"), 0o644)
	_ = os.Rename(tmp, path)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool { return calls.Load() >= 2 },
		"rename did not trigger callback")
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	_ = os.WriteFile(path, []byte("[]"), 0o644)

	calls, stop := startWatch(t, path)
	defer stop()

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644)
	time.Sleep(3 * debounce)

	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "tasks.json"), quietLogger(), func() {})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
