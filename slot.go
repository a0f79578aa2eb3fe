package timingwheel

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Slot is one ring position of a Layer: an intrusive, mutex-guarded
// list of tasks whose expiries fall within the same tick, plus the
// atomic, tick-aligned expiry value the shared DelayQueue orders slots
// by.
//
// A Slot is reused across epochs: each time its task list is flushed
// it reverts to the "not enqueued" sentinel (expiry -1) and waits to
// be claimed by the next virtual id that maps to its ring position.
type Slot struct {
	expiryMS int64 // atomic; -1 when not a member of the delay queue
	count    *taskCounter

	mu    sync.Mutex
	tasks *list.List
}

func newSlot(count *taskCounter) *Slot {
	return &Slot{
		expiryMS: -1,
		count:    count,
		tasks:    list.New(),
	}
}

// Expiration atomically reads the slot's current priority.
func (s *Slot) Expiration() int64 {
	return atomic.LoadInt64(&s.expiryMS)
}

// SetExpiration atomically stores expiryMS and reports whether the
// stored value changed. This is the single synchronization point that
// guarantees a slot is enqueued into the shared delay queue at most
// once per epoch: the caller only offers the slot to the queue when
// SetExpiration returns true.
func (s *Slot) SetExpiration(expiryMS int64) bool {
	return atomic.SwapInt64(&s.expiryMS, expiryMS) != expiryMS
}

// Delay reports the remaining time, in milliseconds, until this slot is
// due, clamped to non-negative, for DelayQueue ordering.
func (s *Slot) Delay(nowMS int64) int64 {
	if d := s.Expiration() - nowMS; d > 0 {
		return d
	}
	return 0
}

// Add appends task to the slot's list, publishes the back-reference,
// and bumps the shared task counter. The task is now a member of this
// slot until Remove or Flush takes it out.
func (s *Slot) Add(t *Task) {
	s.mu.Lock()
	e := s.tasks.PushBack(t)
	t.setSlot(s)
	t.element = e
	s.mu.Unlock()

	s.count.inc()
}

// Remove detaches t from this slot iff t is still recorded as a member
// of it, decrementing the shared task counter on success. It is the
// detach primitive shared by cancellation and run()'s self-unlink;
// Flush detaches its tasks directly rather than through Remove.
func (s *Slot) Remove(t *Task) bool {
	s.mu.Lock()
	if t.getSlot() != s {
		s.mu.Unlock()
		return false
	}
	s.tasks.Remove(t.element)
	t.element = nil
	s.mu.Unlock()

	t.setSlot(nil)
	s.count.dec()
	return true
}

// Flush drains every task currently in the slot, invoking forward for
// each one, and resets the slot's expiry to the "not enqueued"
// sentinel so it is available for a fresh epoch. Tasks are detached
// under the slot's lock but forward is called after releasing it, so a
// slow forward callback (which, per the wheel's cascade, typically
// re-adds the task to a slot and may itself need another slot's lock)
// can never deadlock against this slot or starve other slot holders.
func (s *Slot) Flush(forward func(*Task)) {
	s.mu.Lock()
	drained := make([]*Task, 0, s.tasks.Len())
	for e := s.tasks.Front(); e != nil; {
		next := e.Next()
		t := e.Value.(*Task)
		s.tasks.Remove(e)
		t.setSlot(nil)
		t.element = nil
		drained = append(drained, t)
		e = next
	}
	s.mu.Unlock()

	for range drained {
		s.count.dec()
	}

	s.SetExpiration(-1)

	for _, t := range drained {
		forward(t)
	}
}
