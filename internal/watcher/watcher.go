// Package watcher follows a growing log file and delivers newly appended
// lines. Writes are debounced so a burst of appends is read in one pass.
package watcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/newhook/tasklog/internal/logging"
)

const (
	// DefaultDebounce is the quiet period used when Config.Debounce is zero.
	DefaultDebounce = 100 * time.Millisecond
	// DefaultIdle is how long the file must stay unchanged after a delivery
	// before OnIdle runs.
	DefaultIdle = 500 * time.Millisecond
)

// Config configures a Watcher.
type Config struct {
	Path     string
	Debounce time.Duration
	// FromStart delivers the existing content before following new writes.
	FromStart bool

	// Idle is the quiet period after a delivery before OnIdle runs.
	Idle time.Duration
	// OnIdle, if set, runs once the file has been quiet for Idle after lines
	// were delivered.
	OnIdle func()
	// OnReset, if set, runs when the file is removed, renamed or truncated.
	OnReset func()
}

// DefaultConfig returns a Config for path with the default debounce and idle periods.
func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: DefaultDebounce, Idle: DefaultIdle}
}

// Handler receives complete lines in file order.
type Handler func(lines []string)

// Watcher follows one file.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	offset  int64
	partial []byte
}

// New creates a watcher for cfg.Path. The file's parent directory is watched
// so the file may be created or replaced after the watcher starts.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultIdle
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	cfg.Path = abs

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{cfg: cfg, fsw: fsw}
	if !cfg.FromStart {
		if info, err := os.Stat(abs); err == nil {
			w.offset = info.Size()
		}
	}
	return w, nil
}

// Run delivers lines to handle until ctx is done, then closes the watcher.
// A trailing line without a newline is held back until it is completed.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fsw.Close()

	// awaitingIdle is set by a delivery and cleared when OnIdle runs. New
	// writes hold the idle timer off until they have been read.
	idle := time.NewTimer(w.cfg.Idle)
	idle.Stop()
	awaitingIdle := false
	deliver := func(lines []string) {
		handle(lines)
		awaitingIdle = w.cfg.OnIdle != nil
	}
	drain := func() error {
		if err := w.drain(deliver); err != nil {
			return err
		}
		if awaitingIdle {
			idle.Reset(w.cfg.Idle)
		}
		return nil
	}

	if w.cfg.FromStart {
		if err := drain(); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.cfg.Path {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logging.Debug("watched file removed", "path", w.cfg.Path)
				w.reset()
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				idle.Stop()
				timer.Reset(w.cfg.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("file watcher error", "path", w.cfg.Path, "error", err)

		case <-timer.C:
			if err := drain(); err != nil {
				return err
			}

		case <-idle.C:
			awaitingIdle = false
			w.cfg.OnIdle()
		}
	}
}

// drain reads everything appended since the last read.
func (w *Watcher) drain(handle Handler) error {
	f, err := os.Open(w.cfg.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", w.cfg.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", w.cfg.Path, err)
	}
	if info.Size() < w.offset {
		logging.Debug("watched file truncated", "path", w.cfg.Path)
		w.reset()
	}

	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek %s: %w", w.cfg.Path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.cfg.Path, err)
	}
	w.offset += int64(len(data))

	data = append(w.partial, data...)
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		w.partial = data
		return nil
	}
	w.partial = append([]byte(nil), data[end+1:]...)

	lines := splitLines(data[:end])
	if len(lines) > 0 {
		handle(lines)
	}
	return nil
}

// reset forgets the read position and notifies OnReset.
func (w *Watcher) reset() {
	w.offset = 0
	w.partial = nil
	if w.cfg.OnReset != nil {
		w.cfg.OnReset()
	}
}

func splitLines(data []byte) []string {
	parts := bytes.Split(data, []byte{'\n'})
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(bytes.TrimSuffix(p, []byte{'\r'}))
	}
	return lines
}
