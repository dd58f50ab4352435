package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSignup()                                 {}
func (n *NoopRecorder) IncLogin(status string)                     {}
func (n *NoopRecorder) IncLogout()                                 {}
func (n *NoopRecorder) IncAuthFailure(reason string)               {}
func (n *NoopRecorder) IncSessionCacheHit()                        {}
func (n *NoopRecorder) IncSessionCacheMiss()                       {}
func (n *NoopRecorder) ObserveAuthDuration(duration time.Duration) {}
func (n *NoopRecorder) IncTodoCreated()                            {}
func (n *NoopRecorder) IncTodoUpdated()                            {}
func (n *NoopRecorder) IncTodoDeleted()                            {}
