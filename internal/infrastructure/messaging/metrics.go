package messaging

import (
	"sync"
	"time"

	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// MediatorMetrics tracks mediator throughput and reactor health.
type MediatorMetrics struct {
	mu sync.RWMutex

	// Notify metrics
	NotifiedTotal map[shared.EventName]int64

	// Reactor execution metrics
	ReactorExecutions      int64
	ReactorSuccesses       int64
	ReactorFailures        int64
	ReactorTotalDuration   time.Duration
	FailuresByEvent        map[shared.EventName]int64
	ReactorDurationsByType map[shared.EventName]time.Duration

	// Last reset time
	LastReset time.Time
}

// NewMediatorMetrics creates a new metrics tracker.
func NewMediatorMetrics() *MediatorMetrics {
	return &MediatorMetrics{
		NotifiedTotal:          make(map[shared.EventName]int64),
		FailuresByEvent:        make(map[shared.EventName]int64),
		ReactorDurationsByType: make(map[shared.EventName]time.Duration),
		LastReset:              time.Now(),
	}
}

// RecordNotify records one Notify call.
func (m *MediatorMetrics) RecordNotify(name shared.EventName) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NotifiedTotal[name]++
}

// RecordReactor records a reactor execution.
func (m *MediatorMetrics) RecordReactor(name shared.EventName, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReactorExecutions++
	m.ReactorTotalDuration += duration
	m.ReactorDurationsByType[name] += duration

	if success {
		m.ReactorSuccesses++
	} else {
		m.ReactorFailures++
		m.FailuresByEvent[name]++
	}
}

// Snapshot returns a copy of current metrics.
func (m *MediatorMetrics) Snapshot() MediatorMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avgDuration := time.Duration(0)
	if m.ReactorExecutions > 0 {
		avgDuration = m.ReactorTotalDuration / time.Duration(m.ReactorExecutions)
	}

	var notified int64
	for _, v := range m.NotifiedTotal {
		notified += v
	}

	return MediatorMetricsSnapshot{
		TotalNotified:          notified,
		TotalReactorExecs:      m.ReactorExecutions,
		TotalReactorFailures:   m.ReactorFailures,
		ReactorSuccessRate:     m.successRate(),
		AverageReactorDuration: avgDuration,
		LastReset:              m.LastReset,
	}
}

func (m *MediatorMetrics) successRate() float64 {
	if m.ReactorExecutions == 0 {
		return 1.0
	}
	return float64(m.ReactorSuccesses) / float64(m.ReactorExecutions)
}

// MediatorMetricsSnapshot is a point-in-time snapshot of metrics.
type MediatorMetricsSnapshot struct {
	TotalNotified          int64
	TotalReactorExecs      int64
	TotalReactorFailures   int64
	ReactorSuccessRate     float64
	AverageReactorDuration time.Duration
	LastReset              time.Time
}
