package dispatch

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	patternMetrics map[string]*PatternMetrics

	totalDispatches uint64
	totalNoMatch    uint64
	totalErrors     uint64
	totalPanics     uint64
	totalOptOuts    uint64
	totalDuration   time.Duration
}

// PatternMetrics holds statistics for a single trigger pattern.
type PatternMetrics struct {
	Pattern       string
	DispatchCount uint64
	ErrorCount    uint64
	OptOutCount   uint64
	TotalDuration time.Duration
	LastStatus    Status
	LastDispatch  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		patternMetrics: make(map[string]*PatternMetrics),
	}
}

// Record records a terminal dispatch outcome. An empty pattern records
// a no-match scan.
func (m *Metrics) Record(pattern string, duration time.Duration, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration

	switch status {
	case StatusError:
		m.totalErrors++
	case StatusNoMatch:
		m.totalNoMatch++
		return
	}

	pm := m.patternLocked(pattern)
	pm.DispatchCount++
	pm.TotalDuration += duration
	pm.LastStatus = status
	pm.LastDispatch = time.Now()
	if status == StatusError {
		pm.ErrorCount++
	}
}

// RecordOptOut records a handler that declined a match mid-scan.
func (m *Metrics) RecordOptOut(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalOptOuts++
	m.patternLocked(pattern).OptOutCount++
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalPanics++
	m.patternLocked(pattern).ErrorCount++
}

func (m *Metrics) patternLocked(pattern string) *PatternMetrics {
	pm := m.patternMetrics[pattern]
	if pm == nil {
		pm = &PatternMetrics{Pattern: pattern}
		m.patternMetrics[pattern] = pm
	}
	return pm
}

// TotalDispatches returns the number of dispatch calls recorded.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalNoMatch returns the number of dispatches that matched nothing.
func (m *Metrics) TotalNoMatch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalNoMatch
}

// TotalErrors returns the number of error outcomes.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalErrors
}

// TotalPanics returns the number of recovered handler panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// TotalOptOuts returns the number of opt-out continuations.
func (m *Metrics) TotalOptOuts() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalOptOuts
}

// Patterns returns per-pattern statistics sorted by dispatch count,
// highest first.
func (m *Metrics) Patterns() []PatternMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PatternMetrics, 0, len(m.patternMetrics))
	for _, pm := range m.patternMetrics {
		out = append(out, *pm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchCount != out[j].DispatchCount {
			return out[i].DispatchCount > out[j].DispatchCount
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}
