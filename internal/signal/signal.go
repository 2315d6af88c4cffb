// Package signal ties process signals to context cancellation and lets
// critical sections (archive writes) defer that cancellation until they finish.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu sync.Mutex
	// depth counts nested Block calls.
	depth int
	// deferred holds cancellations that arrived while blocked.
	deferred []context.CancelFunc
)

// WithSignalCancel returns a context cancelled on SIGINT or SIGTERM.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancelUnlessBlocked(cancel)
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Block defers signal cancellation until the matching Unblock. Calls nest.
func Block() {
	mu.Lock()
	defer mu.Unlock()
	depth++
}

// Unblock ends a critical section and runs any cancellation that arrived
// while it was open.
func Unblock() {
	mu.Lock()
	if depth > 0 {
		depth--
	}
	var run []context.CancelFunc
	if depth == 0 {
		run, deferred = deferred, nil
	}
	mu.Unlock()

	for _, cancel := range run {
		cancel()
	}
}

// Blocked reports whether a critical section is open.
func Blocked() bool {
	mu.Lock()
	defer mu.Unlock()
	return depth > 0
}

func cancelUnlessBlocked(cancel context.CancelFunc) {
	mu.Lock()
	if depth > 0 {
		deferred = append(deferred, cancel)
		mu.Unlock()
		return
	}
	mu.Unlock()
	cancel()
}
