package logger

import (
	"sync"
	"time"
)

// Metrics tracks counters and timings for a run. All methods are safe for
// concurrent use; the detail-fetch workers update counters in parallel.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// Incr increments a counter by 1.
func (m *Metrics) Incr(name string) {
	m.Add(name, 1)
}

// Add increments a counter by n.
func (m *Metrics) Add(name string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += n
}

// Timing records one duration measurement.
func (m *Metrics) Timing(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], d)
}

// Snapshot returns the counters plus count/total/average per timing, as
// loggable fields.
func (m *Metrics) Snapshot() Fields {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	timings := make(map[string]Fields, len(m.timings))
	for name, ds := range m.timings {
		if len(ds) == 0 {
			continue
		}
		var total time.Duration
		for _, d := range ds {
			total += d
		}
		timings[name] = Fields{
			"count":   len(ds),
			"total":   total.String(),
			"average": (total / time.Duration(len(ds))).String(),
		}
	}

	return Fields{"counters": counters, "timings": timings}
}
