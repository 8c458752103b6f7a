package numcalc

import "sync/atomic"

// Metrics is a small set of atomic counters tracking engine activity.
// Evaluation has no continuous quantities worth sampling, so plain
// monotonic counters cover everything.
type Metrics struct {
	Evaluations   Counter
	CacheHits     Counter
	CacheMisses   Counter
	DomainErrors  Counter
	SyntaxErrors  Counter
	StepsExecuted Counter
}

// NewMetrics returns a zeroed metrics block.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Counter is a monotonically increasing, concurrency-safe counter.
type Counter struct {
	value int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { atomic.AddInt64(&c.value, 1) }

// Add adds delta to the counter.
func (c *Counter) Add(delta int64) { atomic.AddInt64(&c.value, delta) }

// Get returns the current value.
func (c *Counter) Get() int64 { return atomic.LoadInt64(&c.value) }
