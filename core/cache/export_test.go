package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SetClockForTest overrides the time source of r.
func SetClockForTest(r *Resilient, now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// ConnectedGauge exposes the connection gauge.
func ConnectedGauge() prometheus.Gauge { return cacheUp }
