package timingwheel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunTransitionsToSuccess(t *testing.T) {
	var ran int32
	task := newTask(0, func() { atomic.AddInt32(&ran, 1) }, nopLogger, nil)

	task.run()

	assert.Equal(t, int32(1), ran)
	assert.Equal(t, Success, task.State())
}

func TestTaskRunRecoversPanicIntoFail(t *testing.T) {
	var gotPanic any
	task := newTask(0, func() { panic("boom") }, nopLogger, func(_ *Task, r any) { gotPanic = r })

	task.run()

	assert.Equal(t, Fail, task.State())
	assert.Equal(t, "boom", gotPanic)
}

func TestTaskCancelBeforeRun(t *testing.T) {
	task := newTask(0, func() { t.Fatal("action must not run after cancel wins") }, nopLogger, nil)

	ok := task.cancel()

	assert.True(t, ok)
	assert.Equal(t, Cancel, task.State())
}

func TestTaskCancelAndRunAreMutuallyExclusive(t *testing.T) {
	const n = 200
	for i := 0; i < n; i++ {
		var ran int32
		task := newTask(0, func() { atomic.AddInt32(&ran, 1) }, nopLogger, nil)

		var wg sync.WaitGroup
		var cancelled int32
		wg.Add(2)
		go func() {
			defer wg.Done()
			if task.cancel() {
				atomic.StoreInt32(&cancelled, 1)
			}
		}()
		go func() {
			defer wg.Done()
			task.run()
		}()
		wg.Wait()

		if atomic.LoadInt32(&cancelled) == 1 {
			assert.Equal(t, int32(0), ran, "action must not run once cancel wins")
			assert.Equal(t, Cancel, task.State())
		} else {
			assert.Equal(t, int32(1), ran, "action must run once cancel loses")
			assert.Contains(t, []State{Success, Fail}, task.State())
		}
	}
}

func TestRelocatedTaskIsRemovedFromItsLatestSlot(t *testing.T) {
	count := &taskCounter{}
	task := newTask(1000, func() {}, nopLogger, nil)

	s1 := newSlot(count)
	s1.Add(task)

	s2 := newSlot(count)
	s2.Add(task) // simulates a flush relocating the task to a finer slot

	assert.Same(t, s2, task.getSlot())

	removed := s2.Remove(task)
	assert.True(t, removed)
	assert.Nil(t, task.getSlot())
}
