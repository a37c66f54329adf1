// Package loading counts gateway requests in flight.
package loading

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var inFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "haulage",
	Subsystem: "gateway",
	Name:      "requests_in_flight",
	Help:      "Gateway requests dispatched and not yet settled.",
})

// Default is the process-wide tracker.
var Default = NewTracker(inFlight)

type Tracker struct {
	n     atomic.Int64
	gauge prometheus.Gauge
}

// NewTracker returns a tracker mirrored into gauge. gauge may be nil.
func NewTracker(gauge prometheus.Gauge) *Tracker {
	return &Tracker{gauge: gauge}
}

// Acquire counts one request and returns its release. Release is safe to
// call any number of times; only the first call counts. Callers defer it
// right after acquiring so panics and early returns settle too.
func (t *Tracker) Acquire() (release func()) {
	t.n.Add(1)
	if t.gauge != nil {
		t.gauge.Inc()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			t.n.Add(-1)
			if t.gauge != nil {
				t.gauge.Dec()
			}
		})
	}
}

func (t *Tracker) InFlight() int64 {
	return t.n.Load()
}
