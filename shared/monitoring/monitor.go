package monitoring

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// OperationStats are the accumulated outcomes of one named operation.
type OperationStats struct {
	Successes       int64         `json:"successes"`
	PartialFailures int64         `json:"partial_failures"`
	Failures        int64         `json:"failures"`
	LastDuration    time.Duration `json:"last_duration"`
	LastError       string        `json:"last_error,omitempty"`
	LastRun         time.Time     `json:"last_run"`
}

type Monitor struct {
	mu             sync.Mutex
	lastRunSuccess bool
	lastRunTime    time.Time
	operations     map[string]*OperationStats
	requests       map[RequestKey]int64
}

func NewMonitor() *Monitor {
	return &Monitor{
		operations: make(map[string]*OperationStats),
		requests:   make(map[RequestKey]int64),
	}
}

func (m *Monitor) stats(operation string) *OperationStats {
	s, ok := m.operations[operation]
	if !ok {
		s = &OperationStats{}
		m.operations[operation] = s
	}
	return s
}

func (m *Monitor) RecordSuccess(operation string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastRunSuccess = true
	m.lastRunTime = now

	s := m.stats(operation)
	s.Successes++
	s.LastDuration = duration
	s.LastRun = now

	log.Printf("✅ %s completed (took %v)", operation, duration)
}

// RecordPartialFailure counts a rejected or degraded operation without
// touching the health status.
func (m *Monitor) RecordPartialFailure(operation string, err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats(operation)
	s.PartialFailures++
	s.LastDuration = duration
	s.LastError = err.Error()
	s.LastRun = time.Now()

	log.Printf("⚠️  PARTIAL FAILURE: %s: %s (Duration: %v)", operation, err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(operation string, err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastRunSuccess = false
	m.lastRunTime = now

	s := m.stats(operation)
	s.Failures++
	s.LastDuration = duration
	s.LastError = err.Error()
	s.LastRun = now

	log.Printf("🚨 CRITICAL FAILURE: %s: %s (Duration: %v)", operation, err.Error(), duration)
}

// RecordRequest counts one HTTP response per route and status code.
func (m *Monitor) RecordRequest(route string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests[RequestKey{Route: route, Status: status}]++
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return true
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return "No operations yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last operation: %s", m.lastRunTime.Format("Jan 2 15:04"))
	}
	return fmt.Sprintf("❌ Last operation failed: %s", m.lastRunTime.Format("Jan 2 15:04"))
}

// Operations returns a copy of the per-operation stats.
func (m *Monitor) Operations() map[string]OperationStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]OperationStats, len(m.operations))
	for name, s := range m.operations {
		out[name] = *s
	}
	return out
}

type RequestKey struct {
	Route  string
	Status int
}

type RequestCount struct {
	RequestKey
	Count int64
}

// Requests returns the per-route counters ordered by route, then status.
func (m *Monitor) Requests() []RequestCount {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RequestCount, 0, len(m.requests))
	for key, n := range m.requests {
		out = append(out, RequestCount{RequestKey: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		return out[i].Status < out[j].Status
	})
	return out
}
