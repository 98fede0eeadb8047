package dispatch

import (
	"sort"
	"strings"
	"sync"

	"deskai/internal/session"
)

// MatchMode selects how a pattern is compared against a query.
type MatchMode uint8

const (
	// MatchContains matches when the pattern is a substring of the
	// normalized query. This is the default mode.
	MatchContains MatchMode = iota
	// MatchExact matches when the normalized query equals the pattern.
	MatchExact
)

// String returns a string representation of the match mode.
func (m MatchMode) String() string {
	switch m {
	case MatchContains:
		return "contains"
	case MatchExact:
		return "exact"
	default:
		return "unknown"
	}
}

// HandlerFunc processes a matched query. It receives the shared session
// and the original, non-normalized query text.
type HandlerFunc func(sess *session.Session, query string) Result

// Registration is one handler with its trigger patterns, priority, and
// match mode. Registrations are immutable once registered.
type Registration struct {
	// Patterns are the lower-cased trigger strings, in the order the
	// registrant supplied them.
	Patterns []string

	// Priority orders evaluation; higher values are tried first.
	Priority int

	// Mode selects exact or substring matching.
	Mode MatchMode

	// Handler is invoked on a pattern match.
	Handler HandlerFunc

	// seq is the registration order, used to keep priority ties stable.
	seq int
}

// match returns the first pattern in registration order that matches
// the normalized query, or "" when none does.
func (r *Registration) match(normalized string) string {
	for _, pattern := range r.Patterns {
		switch r.Mode {
		case MatchExact:
			if normalized == pattern {
				return pattern
			}
		default:
			if strings.Contains(normalized, pattern) {
				return pattern
			}
		}
	}
	return ""
}

// RegisterOption configures a registration.
type RegisterOption func(*Registration)

// WithPriority sets the registration priority. Higher priorities are
// evaluated first. The default is 0.
func WithPriority(priority int) RegisterOption {
	return func(r *Registration) {
		r.Priority = priority
	}
}

// WithExactMatch requires the query to equal a pattern exactly instead
// of merely containing it.
func WithExactMatch() RegisterOption {
	return func(r *Registration) {
		r.Mode = MatchExact
	}
}

// Registry holds command registrations in evaluation order: priority
// descending, ties broken by registration order. Registrations are
// append-only; skills are never hot-unloaded.
type Registry struct {
	mu   sync.RWMutex
	regs []*Registration
	seq  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a registration. Patterns are normalized to lower
// case; empty patterns are dropped. Registering no usable patterns or a
// nil handler is an error.
func (r *Registry) Register(patterns []string, handler HandlerFunc, opts ...RegisterOption) error {
	if handler == nil {
		return ErrNilHandler
	}

	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}
	if len(normalized) == 0 {
		return ErrNoPatterns
	}

	reg := &Registration{
		Patterns: normalized,
		Handler:  handler,
	}
	for _, opt := range opts {
		opt(reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reg.seq = r.seq
	r.seq++
	r.regs = append(r.regs, reg)

	// Stable sort keeps registration order within equal priorities, so
	// earlier-registered handlers win ties deterministically.
	sort.SliceStable(r.regs, func(i, j int) bool {
		return r.regs[i].Priority > r.regs[j].Priority
	})

	return nil
}

// List returns a snapshot of registrations in evaluation order.
func (r *Registry) List() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Registration, len(r.regs))
	copy(out, r.regs)
	return out
}

// Count returns the number of registrations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regs)
}

// Patterns returns the sorted, de-duplicated pattern vocabulary across
// all registrations. Used by the help command.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, reg := range r.regs {
		for _, p := range reg.Patterns {
			seen[p] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
