package timingwheel

import "sync/atomic"

// fakeClock lets tests pin "now" for due/not-due comparisons without
// depending on real wall-clock pacing. DelayQueue.Take still sleeps in
// real time for any positive remaining delay it computes, so fakeClock
// is only useful for immediate (non-blocking) due-now assertions.
type fakeClock struct {
	ms atomic.Int64
}

func newFakeClock(startMS int64) *fakeClock {
	c := &fakeClock{}
	c.ms.Store(startMS)
	return c
}

func (c *fakeClock) NowMS() int64 { return c.ms.Load() }

func (c *fakeClock) Set(ms int64) { c.ms.Store(ms) }

func (c *fakeClock) Advance(deltaMS int64) { c.ms.Add(deltaMS) }
