package catalog

import "sync/atomic"

// Sequencer numbers page fetches for one screen. Only the response to the
// most recently issued number may be applied; anything older is stale.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number, invalidating all earlier ones.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether seq is still the newest number issued.
func (s *Sequencer) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}
