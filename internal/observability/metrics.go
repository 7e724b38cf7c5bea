package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-process request counters. There is no external metrics
// backend; counters are exposed over the debug endpoint instead.
type Metrics struct {
	mu       sync.RWMutex
	requests map[string]int64
	errors   map[string]int64
	latency  map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		errors:   make(map[string]int64),
		latency:  make(map[string]time.Duration),
	}
}

// RecordRequest counts one handled request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.latency[key] += duration
}

// RecordError counts one error response by domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() (requests, errors map[string]int64) {
	requests = make(map[string]int64)
	errors = make(map[string]int64)
	if m == nil {
		return requests, errors
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.requests {
		requests[k] = v
	}
	for k, v := range m.errors {
		errors[k] = v
	}
	return requests, errors
}
