// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncSignup()
	IncLogin(status string) // status: "success" or "failed"
	IncLogout()

	// Session guard metrics
	IncAuthFailure(reason string)
	IncSessionCacheHit()
	IncSessionCacheMiss()
	ObserveAuthDuration(duration time.Duration)

	// Todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
