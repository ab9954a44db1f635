// Package monitoring defines the error reporting hook used by the planning
// engine.
package monitoring

import (
	"sync"
	"time"
)

// Monitor reports errors to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// CaptureTenantError reports err tagged with the tenant and the failing
// stage. A nil monitor or error is ignored.
func CaptureTenantError(m Monitor, tenantID, stage string, err error) {
	if m == nil || err == nil {
		return
	}
	m.CaptureException(err, map[string]string{"tenant_id": tenantID, "stage": stage})
}

// Captured is one exception seen by a Recorder.
type Captured struct {
	Err  error
	Tags map[string]string
}

// Recorder is an in-memory Monitor.
type Recorder struct {
	mu       sync.Mutex
	captured []Captured
}

func (r *Recorder) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captured = append(r.captured, Captured{Err: err, Tags: tags})
}

func (r *Recorder) Recover()            {}
func (r *Recorder) Flush(time.Duration) {}

// Captured returns a copy of the recorded exceptions.
func (r *Recorder) Captured() []Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Captured, len(r.captured))
	copy(out, r.captured)
	return out
}
