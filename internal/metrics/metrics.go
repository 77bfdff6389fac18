package metrics

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Metrics counts events and accumulates timings during one run.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string]time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string]time.Duration),
	}
}

// NoMetrics returns a Metrics that discards everything.
func NoMetrics() *Metrics {
	return &Metrics{}
}

// Record starts a timer; calling the returned function stops it.
func (x *Metrics) Record(metricName string) func() {
	if x.timings == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		x.timings[metricName] += time.Since(start)
	}
}

func (x *Metrics) Increment(metricName string) {
	x.Add(metricName, 1)
}

func (x *Metrics) Add(metricName string, n int64) {
	if x.counters == nil {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.counters[metricName] += n
}

// Count returns the current value of a counter.
func (x *Metrics) Count(metricName string) int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.counters[metricName]
}

// Report logs all counters and timings.
func (x *Metrics) Report(logger *zap.Logger) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.counters == nil {
		return
	}

	fields := make([]zap.Field, 0, len(x.counters)+len(x.timings))
	for _, name := range sortedKeys(x.counters) {
		fields = append(fields, zap.Int64(name, x.counters[name]))
	}
	for _, name := range sortedKeys(x.timings) {
		fields = append(fields, zap.Duration(name+"_time", x.timings[name]))
	}
	logger.Info("Run statistics", fields...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
