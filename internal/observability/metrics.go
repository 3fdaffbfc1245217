package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu             sync.Mutex
	started        time.Time
	requestCount   map[string]int64
	requestLatency map[string]time.Duration
	errorCount     map[string]int64
	operations     map[string]int64
}

// RequestStat is the aggregate for one route, method and status.
type RequestStat struct {
	Count        int64   `json:"count"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	UptimeSeconds int64                  `json:"uptimeSeconds"`
	Requests      map[string]RequestStat `json:"requests"`
	Errors        map[string]int64       `json:"errors"`
	Operations    map[string]int64       `json:"operations"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:        time.Now(),
		requestCount:   make(map[string]int64),
		requestLatency: make(map[string]time.Duration),
		errorCount:     make(map[string]int64),
		operations:     make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestLatency[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordOperation counts a lifecycle operation by outcome ("ok" or an error code).
func (m *Metrics) RecordOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[operation+"|"+outcome]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Requests:      make(map[string]RequestStat, len(m.requestCount)),
		Errors:        make(map[string]int64, len(m.errorCount)),
		Operations:    make(map[string]int64, len(m.operations)),
	}
	for key, count := range m.requestCount {
		avg := float64(m.requestLatency[key].Microseconds()) / float64(count) / 1000
		snap.Requests[key] = RequestStat{Count: count, AvgLatencyMs: avg}
	}
	for key, count := range m.errorCount {
		snap.Errors[key] = count
	}
	for key, count := range m.operations {
		snap.Operations[key] = count
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
