package timingwheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotAddPublishesBackReferenceUnderLock(t *testing.T) {
	count := &taskCounter{}
	s := newSlot(count)
	task := newTask(100, func() {}, nopLogger, nil)

	s.Add(task)

	assert.Same(t, s, task.getSlot())
	assert.Equal(t, int64(1), count.load())
}

func TestSlotSetExpirationReportsChangeOnly(t *testing.T) {
	s := newSlot(&taskCounter{})

	assert.True(t, s.SetExpiration(500))
	assert.False(t, s.SetExpiration(500))
	assert.True(t, s.SetExpiration(600))
	assert.Equal(t, int64(600), s.Expiration())
}

func TestSlotDelayClampsToZero(t *testing.T) {
	s := newSlot(&taskCounter{})
	s.SetExpiration(1000)

	assert.Equal(t, int64(0), s.Delay(1000))
	assert.Equal(t, int64(0), s.Delay(1500))
	assert.Equal(t, int64(200), s.Delay(800))
}

func TestSlotRemoveOnlyDetachesCurrentMember(t *testing.T) {
	count := &taskCounter{}
	s1 := newSlot(count)
	s2 := newSlot(count)
	task := newTask(0, func() {}, nopLogger, nil)

	s1.Add(task)

	// task now belongs to s1; s2 never held it.
	assert.False(t, s2.Remove(task))
	assert.Equal(t, int64(1), count.load())

	assert.True(t, s1.Remove(task))
	assert.Nil(t, task.getSlot())
	assert.Equal(t, int64(0), count.load())

	// second removal is a no-op, not a double-decrement.
	assert.False(t, s1.Remove(task))
	assert.Equal(t, int64(0), count.load())
}

func TestSlotFlushDrainsAllAndResetsExpiration(t *testing.T) {
	count := &taskCounter{}
	s := newSlot(count)
	s.SetExpiration(42)

	const n = 50
	tasks := make([]*Task, n)
	for i := range tasks {
		tasks[i] = newTask(int64(i), func() {}, nopLogger, nil)
		s.Add(tasks[i])
	}
	require.Equal(t, int64(n), count.load())

	var forwarded []*Task
	s.Flush(func(t *Task) { forwarded = append(forwarded, t) })

	assert.Len(t, forwarded, n)
	assert.Equal(t, int64(0), count.load())
	assert.Equal(t, int64(-1), s.Expiration())
	for _, task := range tasks {
		assert.Nil(t, task.getSlot())
	}
}

func TestSlotFlushOfEmptySlotIsNoop(t *testing.T) {
	s := newSlot(&taskCounter{})
	s.SetExpiration(10)

	var calls int
	s.Flush(func(*Task) { calls++ })

	assert.Equal(t, 0, calls)
	assert.Equal(t, int64(-1), s.Expiration())
}

func TestSlotFlushDetachesBeforeInvokingForward(t *testing.T) {
	// A forward callback that immediately re-adds the task to a fresh
	// slot must see a task with no slot recorded yet, matching the
	// cascading-promotion use the driver makes of Flush.
	count := &taskCounter{}
	s := newSlot(count)
	task := newTask(0, func() {}, nopLogger, nil)
	s.Add(task)

	var other *Slot
	s.Flush(func(tsk *Task) {
		assert.Nil(t, tsk.getSlot())
		other = newSlot(count)
		other.Add(tsk)
	})

	assert.Same(t, other, task.getSlot())
	assert.Equal(t, int64(1), count.load())
}
