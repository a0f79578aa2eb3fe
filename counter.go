package timingwheel

import "sync/atomic"

// taskCounter is the shared count of tasks currently resident in some
// slot, across every layer. It is incremented by Slot.Add and
// decremented by Slot.Remove/Slot.Flush; the driver's TaskCount reads
// it directly.
type taskCounter struct {
	n atomic.Int64
}

func (c *taskCounter) inc() { c.n.Add(1) }
func (c *taskCounter) dec() { c.n.Add(-1) }
func (c *taskCounter) load() int64 { return c.n.Load() }
