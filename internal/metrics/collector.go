// Package metrics times GraphQL requests and store calls for the --verbose
// runtime summary.
package metrics

import (
	"sync"
	"time"
)

// Op names a timed operation. The value is also its display label.
type Op string

const (
	OpGraphQL     Op = "GraphQL"
	OpStoreRead   Op = "Store Read"
	OpStoreWrite  Op = "Store Write"
	OpStoreDelete Op = "Store Delete"
)

// displayOrder is the order of Snapshot.Ops.
var displayOrder = []Op{OpGraphQL, OpStoreRead, OpStoreWrite, OpStoreDelete}

type timing struct {
	calls    int64
	failures int64
	total    time.Duration
	fastest  time.Duration
	slowest  time.Duration
}

func (t *timing) add(d time.Duration, failed bool) {
	if t.calls == 0 || d < t.fastest {
		t.fastest = d
	}
	t.slowest = max(t.slowest, d)
	t.calls++
	t.total += d
	if failed {
		t.failures++
	}
}

// OperationSnapshot is the summary of one operation.
type OperationSnapshot struct {
	Op          Op
	Count       int64
	Errors      int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot holds the statistics at a point in time. Ops lists only the
// operations that ran.
type Snapshot struct {
	UptimeSeconds float64
	Ops           []OperationSnapshot
}

// Op returns the summary for op, or nil if it never ran.
func (s Snapshot) Op(op Op) *OperationSnapshot {
	for i := range s.Ops {
		if s.Ops[i].Op == op {
			return &s.Ops[i]
		}
	}
	return nil
}

// Collector accumulates timings. It is safe for concurrent use and a nil
// *Collector discards everything.
type Collector struct {
	mu      sync.Mutex
	started time.Time
	timings map[Op]*timing
}

func NewCollector() *Collector {
	return &Collector{
		started: time.Now(),
		timings: make(map[Op]*timing),
	}
}

// Observe records a call to op that began at start and ended with err.
func (c *Collector) Observe(op Op, start time.Time, err error) {
	c.Record(op, time.Since(start), err != nil)
}

// Record adds one call of duration d.
func (c *Collector) Record(op Op, d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timings[op]
	if !ok {
		t = &timing{}
		c.timings[op] = t
	}
	t.add(d, failed)
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{UptimeSeconds: time.Since(c.started).Seconds()}
	for _, op := range displayOrder {
		t, ok := c.timings[op]
		if !ok {
			continue
		}
		snap.Ops = append(snap.Ops, OperationSnapshot{
			Op:          op,
			Count:       t.calls,
			Errors:      t.failures,
			TotalTimeMs: t.total.Milliseconds(),
			AvgTimeMs:   float64(t.total) / float64(t.calls) / float64(time.Millisecond),
			MinTimeMs:   t.fastest.Milliseconds(),
			MaxTimeMs:   t.slowest.Milliseconds(),
		})
	}
	return snap
}
