package registry

import (
	"io"
	"log/slog"
)

// Option configures a Registry.
type Option func(r *Registry)

// WithLogger sets the logger for registry events. Registration and release
// are logged at debug level, rejected operations and leaks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithLeakWriter sets where the Shutdown leak warning is written.
// Pass nil to disable the written warning; leaks are still logged.
func WithLeakWriter(w io.Writer) Option {
	return func(r *Registry) {
		r.leakOut = w
	}
}

// WithDrainOnShutdown makes Shutdown run the cleanup action of every leaked
// entry instead of only dropping it.
func WithDrainOnShutdown(drain bool) Option {
	return func(r *Registry) {
		r.drain = drain
	}
}

// WithDropHook registers fn to be called for every entry that Shutdown drops
// without running its cleanup. Owners of external accounting use it to forget
// what the registry no longer tracks. Hooks run in registration order after
// the registry lock is released.
func WithDropHook(fn func(Entry)) Option {
	return func(r *Registry) {
		if fn != nil {
			r.onDrop = append(r.onDrop, fn)
		}
	}
}
