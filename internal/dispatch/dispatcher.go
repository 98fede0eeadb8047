package dispatch

import (
	"log/slog"
	"runtime"
	"strings"
	"time"

	"deskai/internal/session"
)

// Dispatcher routes queries to the highest-priority matching handler.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics enables dispatch statistics collection.
func WithMetrics() Option {
	return func(d *Dispatcher) {
		d.metrics = NewMetrics()
	}
}

// New creates a dispatcher over the given registry.
func New(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Dispatch routes a query to the first matching handler.
//
// A blank query returns NoMatch without touching any handler. The query
// is lower-cased and trimmed once for matching; handlers receive the
// original text. A handler that opts out (or returns a handled result
// carrying nothing) is skipped and scanning continues. A handler that
// fails terminates the dispatch with an error outcome; no further
// handlers run. When the scan exhausts the registry, NoMatch is
// returned so the caller can render its generic fallback.
func (d *Dispatcher) Dispatch(query string, sess *session.Session) Result {
	start := time.Now()

	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return NoMatch()
	}

	d.logger.Debug("dispatching query", "query", normalized)

	for _, reg := range d.registry.List() {
		pattern := reg.match(normalized)
		if pattern == "" {
			continue
		}

		d.logger.Debug("pattern matched",
			"pattern", pattern,
			"priority", reg.Priority,
			"mode", reg.Mode.String())

		result := d.invoke(reg, pattern, sess, query)

		switch result.Status {
		case StatusOptOut:
			d.logger.Debug("handler opted out, continuing", "pattern", pattern)
			if d.metrics != nil {
				d.metrics.RecordOptOut(pattern)
			}
			continue

		case StatusError:
			d.logger.Error("handler failed",
				"pattern", pattern,
				"error", result.Err)
			if d.metrics != nil {
				d.metrics.Record(pattern, time.Since(start), result.Status)
			}
			return result

		default:
			// A handled result with no response, action, or data is an
			// implicit opt-out.
			if result.Empty() {
				d.logger.Debug("handler returned empty result, continuing", "pattern", pattern)
				if d.metrics != nil {
					d.metrics.RecordOptOut(pattern)
				}
				continue
			}

			d.logger.Info("command executed", "pattern", pattern, "priority", reg.Priority)
			if d.metrics != nil {
				d.metrics.Record(pattern, time.Since(start), result.Status)
			}
			return result
		}
	}

	d.logger.Warn("no handler matched query", "query", normalized)
	if d.metrics != nil {
		d.metrics.Record("", time.Since(start), StatusNoMatch)
	}
	return NoMatch()
}

// invoke runs a handler with panic recovery. A panicking handler is
// converted to an error result; its match is final.
func (d *Dispatcher) invoke(reg *Registration, pattern string, sess *session.Session, query string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			d.logger.Error("handler panic",
				"pattern", pattern,
				"panic", r,
				"stack", string(stack[:n]))
			if d.metrics != nil {
				d.metrics.RecordPanic(pattern)
			}
			result = Errorf("handler panic for %q: %v", pattern, r)
		}
	}()

	return reg.Handler(sess, query)
}
