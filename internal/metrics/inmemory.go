package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups             uint64
	LoginsSucceeded     uint64
	LoginsFailed        uint64
	Logouts             uint64
	AuthFailures        map[string]uint64
	SessionCacheHits    uint64
	SessionCacheMisses  uint64
	AuthDurationCount   uint64
	AuthDurationTotalNs int64
	TodosCreated        uint64
	TodosUpdated        uint64
	TodosDeleted        uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint and tests.
type InMemoryRecorder struct {
	signups             atomic.Uint64
	loginsSucceeded     atomic.Uint64
	loginsFailed        atomic.Uint64
	logouts             atomic.Uint64
	sessionCacheHits    atomic.Uint64
	sessionCacheMisses  atomic.Uint64
	authDurationCount   atomic.Uint64
	authDurationTotalNs atomic.Int64
	todosCreated        atomic.Uint64
	todosUpdated        atomic.Uint64
	todosDeleted        atomic.Uint64

	mu           sync.Mutex
	authFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{authFailures: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	failures := maps.Clone(m.authFailures)
	m.mu.Unlock()

	return Snapshot{
		Signups:             m.signups.Load(),
		LoginsSucceeded:     m.loginsSucceeded.Load(),
		LoginsFailed:        m.loginsFailed.Load(),
		Logouts:             m.logouts.Load(),
		AuthFailures:        failures,
		SessionCacheHits:    m.sessionCacheHits.Load(),
		SessionCacheMisses:  m.sessionCacheMisses.Load(),
		AuthDurationCount:   m.authDurationCount.Load(),
		AuthDurationTotalNs: m.authDurationTotalNs.Load(),
		TodosCreated:        m.todosCreated.Load(),
		TodosUpdated:        m.todosUpdated.Load(),
		TodosDeleted:        m.todosDeleted.Load(),
	}
}

// IncSignup increments the signup counter.
func (m *InMemoryRecorder) IncSignup() {
	m.signups.Add(1)
}

// IncLogin increments the login counter for the given status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncLogout increments the logout counter.
func (m *InMemoryRecorder) IncLogout() {
	m.logouts.Add(1)
}

// IncAuthFailure counts a rejected request by reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}

// IncSessionCacheHit increments the session cache hit counter.
func (m *InMemoryRecorder) IncSessionCacheHit() {
	m.sessionCacheHits.Add(1)
}

// IncSessionCacheMiss increments the session cache miss counter.
func (m *InMemoryRecorder) IncSessionCacheMiss() {
	m.sessionCacheMisses.Add(1)
}

// ObserveAuthDuration records how long session resolution took.
func (m *InMemoryRecorder) ObserveAuthDuration(duration time.Duration) {
	m.authDurationCount.Add(1)
	m.authDurationTotalNs.Add(duration.Nanoseconds())
}

// IncTodoCreated increments the todo created counter.
func (m *InMemoryRecorder) IncTodoCreated() {
	m.todosCreated.Add(1)
}

// IncTodoUpdated increments the todo updated counter.
func (m *InMemoryRecorder) IncTodoUpdated() {
	m.todosUpdated.Add(1)
}

// IncTodoDeleted increments the todo deleted counter.
func (m *InMemoryRecorder) IncTodoDeleted() {
	m.todosDeleted.Add(1)
}
