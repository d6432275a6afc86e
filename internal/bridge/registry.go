// Package bridge tracks kernel bridge devices this process has
// created so they can be torn down on exit, including on SIGINT/
// SIGTERM, per spec.md §4.5 and §9.
package bridge

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"tunbridge/internal/iface"
	"tunbridge/internal/logging"
)

// Registry is a process-global stack of bridge names this process
// created, so a best-effort cleanup can run them in reverse creation
// order on exit.
type Registry struct {
	mu      sync.Mutex
	created []string
	done    map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{done: make(map[string]bool)}
}

// Track records that name was created by this process and should be
// deleted on cleanup.
func (r *Registry) Track(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, name)
}

// Cleanup deletes every tracked bridge in reverse creation order.
// Calling Cleanup more than once is a no-op for names already
// deleted, so it is safe to call both from a signal handler and from
// an ordinary deferred shutdown path.
func (r *Registry) Cleanup(logger logging.Logger) {
	r.mu.Lock()
	names := make([]string, len(r.created))
	copy(names, r.created)
	r.mu.Unlock()

	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		r.mu.Lock()
		already := r.done[name]
		r.done[name] = true
		r.mu.Unlock()
		if already {
			continue
		}
		if err := iface.DeleteBridge(name); err != nil {
			logger.Printf("bridge: cleanup %s: %v", name, err)
		}
	}
}

// NotifyOnSignal installs a SIGINT/SIGTERM handler that runs Cleanup
// and then cancel, letting the caller's own shutdown path (closing
// the engine's context) take it from there instead of exiting the
// process directly — spec.md §4.5/§7's ordinary graceful-shutdown
// path still runs, it just starts from a cancelled context. Only
// called when a bridge is configured (see cmd/tunbridge); when that
// bridge already existed it was never tracked, so Cleanup deletes
// nothing and the handler only cancels. A session with no bridge has
// nothing extra for a signal handler to do beyond what context
// cancellation already covers. Returns a stop function that removes the handler without
// running cleanup, for normal non-signal shutdown paths.
func (r *Registry) NotifyOnSignal(logger logging.Logger, cancel func()) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			r.Cleanup(logger)
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
