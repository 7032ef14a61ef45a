// Package metrics holds the per-worker counters the cache manager and
// record parser accumulate during a run, expressed as atomics so each
// worker updates its own set without contention.
package metrics

import "sync/atomic"

// Counters is one worker's running totals. The zero value is ready to use.
type Counters struct {
	BytesRead    atomic.Int64 // bytes pulled off the stream by this worker's fills
	FillNanos    atomic.Int64 // cumulative time spent inside ReadInto
	WaitNanos    atomic.Int64 // cumulative time spent waiting for another worker's turn to fill
	BarrierNanos atomic.Int64 // cumulative time spent parked in the termination barrier
	RecordsRead  atomic.Int64 // records successfully parsed
	SplitCount   atomic.Int64 // boundary fragments this worker donated
	FormatErrors atomic.Int64 // malformed records encountered
}

// Add folds other's values into c. Intended for producing a run-wide total
// from the per-worker slice once every worker has finished.
func (c *Counters) Add(other *Counters) {
	c.BytesRead.Add(other.BytesRead.Load())
	c.FillNanos.Add(other.FillNanos.Load())
	c.WaitNanos.Add(other.WaitNanos.Load())
	c.BarrierNanos.Add(other.BarrierNanos.Load())
	c.RecordsRead.Add(other.RecordsRead.Load())
	c.SplitCount.Add(other.SplitCount.Load())
	c.FormatErrors.Add(other.FormatErrors.Load())
}

// Sum returns a new Counters holding the total of all the given per-worker
// counters.
func Sum(per []*Counters) *Counters {
	total := &Counters{}
	for _, c := range per {
		total.Add(c)
	}
	return total
}
