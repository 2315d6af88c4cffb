package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendTo(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(s)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func start(t *testing.T, cfg Config) <-chan []string {
	t.Helper()
	w, err := New(cfg)
	require.NoError(t, err, "failed to create watcher")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.Cleanup(func() {
		cancel()
		<-done
	})

	out := make(chan []string, 16)
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(lines []string) { out <- lines })
	}()
	return out
}

func receive(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case lines := <-ch:
		return lines
	case <-time.After(3 * time.Second):
		require.Fail(t, "timeout waiting for lines")
		return nil
	}
}

func TestWatcher_DeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	appendTo(t, path, "old line\n")

	out := start(t, Config{Path: path, Debounce: 20 * time.Millisecond})
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "Output Property: A=B\r\nTask Parameter:C=D\n")
	assert.Equal(t, []string{"Output Property: A=B", "Task Parameter:C=D"}, receive(t, out))
}

func TestWatcher_FromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	appendTo(t, path, "first\nsecond\n")

	out := start(t, Config{Path: path, Debounce: 20 * time.Millisecond, FromStart: true})
	assert.Equal(t, []string{"first", "second"}, receive(t, out))
}

func TestWatcher_HoldsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	appendTo(t, path, "")

	out := start(t, Config{Path: path, Debounce: 20 * time.Millisecond})
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "Added Item(s): Com")
	time.Sleep(150 * time.Millisecond)
	select {
	case lines := <-out:
		require.Failf(t, "unexpected delivery", "%v", lines)
	default:
	}

	appendTo(t, path, "pile=\n")
	assert.Equal(t, []string{"Added Item(s): Compile="}, receive(t, out))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "build.log")
	other := filepath.Join(dir, "other.log")
	appendTo(t, path, "")

	out := start(t, Config{Path: path, Debounce: 20 * time.Millisecond})
	time.Sleep(50 * time.Millisecond)

	appendTo(t, other, "noise\n")
	time.Sleep(150 * time.Millisecond)
	select {
	case lines := <-out:
		require.Failf(t, "unexpected delivery", "%v", lines)
	default:
	}

	appendTo(t, path, "signal\n")
	assert.Equal(t, []string{"signal"}, receive(t, out))
}

func TestWatcher_FileCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")

	out := start(t, DefaultConfig(path))
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "created\n")
	assert.Equal(t, []string{"created"}, receive(t, out))
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(DefaultConfig(filepath.Join(t.TempDir(), "missing", "build.log")))
	require.Error(t, err)
}

func TestWatcher_OnIdleAfterDelivery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	appendTo(t, path, "")

	idle := make(chan struct{}, 4)
	out := start(t, Config{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		Idle:     100 * time.Millisecond,
		OnIdle:   func() { idle <- struct{}{} },
	})
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "Task Parameter:\n")
	assert.Equal(t, []string{"Task Parameter:"}, receive(t, out))

	// More lines inside the idle period arrive before OnIdle runs.
	appendTo(t, path, "    Sources=\n")
	assert.Equal(t, []string{"    Sources="}, receive(t, out))
	select {
	case <-idle:
		require.Fail(t, "OnIdle ran before the file went quiet")
	default:
	}

	select {
	case <-idle:
	case <-time.After(3 * time.Second):
		require.Fail(t, "timeout waiting for OnIdle")
	}

	time.Sleep(250 * time.Millisecond)
	assert.Empty(t, idle, "OnIdle runs once per quiet period")
}

func TestWatcher_OnResetWhenTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	appendTo(t, path, "")

	reset := make(chan struct{}, 4)
	out := start(t, Config{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		OnReset:  func() { reset <- struct{}{} },
	})
	time.Sleep(50 * time.Millisecond)

	appendTo(t, path, "first build line\n")
	assert.Equal(t, []string{"first build line"}, receive(t, out))

	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0644))
	assert.Equal(t, []string{"new"}, receive(t, out))
	select {
	case <-reset:
	case <-time.After(3 * time.Second):
		require.Fail(t, "timeout waiting for OnReset")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("build.log")
	assert.Equal(t, "build.log", cfg.Path)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
	assert.Equal(t, DefaultIdle, cfg.Idle)
	assert.False(t, cfg.FromStart)
}
