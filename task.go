package timingwheel

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State is a Task's position in its lifecycle. Wait is the initial
// state; the others are reached in the order Wait -> Running ->
// {Success, Fail}, or Wait -> Cancel. Success, Fail and Cancel are
// terminal.
type State int

const (
	// Wait is the initial state: the task is linked into at most one
	// slot, waiting to expire.
	Wait State = iota
	// Running means run() won the Wait->Running transition and is
	// currently invoking the action.
	Running
	// Success means the action returned without panicking.
	Success
	// Fail means the action panicked; it is reached only from Running.
	Fail
	// Cancel means cancel() won the Wait->Cancel transition before the
	// task could run.
	Cancel
)

func (s State) String() string {
	switch s {
	case Wait:
		return "Wait"
	case Running:
		return "Running"
	case Success:
		return "Success"
	case Fail:
		return "Fail"
	case Cancel:
		return "Cancel"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Task is the unit of scheduled work: an absolute expiry, an action to
// invoke at that expiry, and the bookkeeping needed to detach it from
// whichever Slot currently holds it, from any goroutine, at any time.
type Task struct {
	id       string
	expiryMS int64
	action   func()
	logger   Logger
	onPanic  func(task *Task, recovered any)

	mu    sync.Mutex
	state State

	// slot and element together locate this task's membership in a
	// Slot's intrusive list. slot is read and written under slotMu
	// (getSlot/setSlot); element is written under the owning slot's mu
	// (see Slot.Add/Slot.Remove/Slot.Flush). Neither uses task.mu: a
	// flush can relocate a task to a different slot without ever
	// touching task.mu, which is exactly the race remove() is written
	// to tolerate.
	slotMu  sync.Mutex
	slot    *Slot
	element *list.Element
}

func newTask(expiryMS int64, action func(), logger Logger, onPanic func(*Task, any)) *Task {
	return &Task{
		id:       uuid.NewString(),
		expiryMS: expiryMS,
		action:   action,
		logger:   logger,
		onPanic:  onPanic,
		state:    Wait,
	}
}

// Delay reports the remaining time, in milliseconds, until this task's
// expiry, clamped to non-negative. It satisfies the Delayed contract
// the generic DelayQueue is built on (Slot also does, over its own
// expiry); Task itself is never placed directly into the delay queue,
// only its holding Slot is.
func (t *Task) Delay(nowMS int64) int64 {
	if d := t.expiryMS - nowMS; d > 0 {
		return d
	}
	return 0
}

// TaskHandle is what AddTask/AddTaskAt hand back to callers: the
// expiry, lifecycle state, and the ability to cancel. It is the same
// object the driver and wheel mutate internally; a caller only ever
// sees it through this exported surface.
type TaskHandle = *Task

// Cancel attempts to move the task out of Wait into Cancel before it
// fires. It returns false if the task has already started running,
// already finished, or was already cancelled; that is not an error,
// it means the task left Wait by some other path first.
func (t *Task) Cancel() bool {
	return t.cancel()
}

// ID is a log-correlation identifier. It has no bearing on scheduling
// or equality; tasks are otherwise compared by pointer identity.
func (t *Task) ID() string { return t.id }

// ExpiryMS is the absolute expiry this task was submitted with.
func (t *Task) ExpiryMS() int64 { return t.expiryMS }

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Task) getSlot() *Slot {
	t.slotMu.Lock()
	defer t.slotMu.Unlock()
	return t.slot
}

func (t *Task) setSlot(s *Slot) {
	t.slotMu.Lock()
	t.slot = s
	t.slotMu.Unlock()
}

// run attempts the Wait->Running transition. If another transition has
// already happened, run is a no-op. Otherwise it detaches the task from
// its slot and invokes the action outside of any lock, so a slow or
// blocking action never stalls a canceller or the driver. A panicking
// action is recovered and folds into Fail; the panic is never allowed
// to escape run() and crash the caller.
func (t *Task) run() {
	t.mu.Lock()
	if t.state != Wait {
		t.mu.Unlock()
		return
	}
	t.state = Running
	t.mu.Unlock()

	t.remove()

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.mu.Lock()
				t.state = Fail
				t.mu.Unlock()
				if t.onPanic != nil {
					t.onPanic(t, r)
				}
				return
			}
			t.mu.Lock()
			t.state = Success
			t.mu.Unlock()
		}()
		t.action()
	}()
}

// cancel attempts the Wait->Cancel transition. It returns true iff this
// call won the race against run(); exactly one of cancel()==true and
// the action being invoked ever happens for a given task.
func (t *Task) cancel() bool {
	t.mu.Lock()
	if t.state != Wait {
		t.mu.Unlock()
		return false
	}
	t.state = Cancel
	t.mu.Unlock()

	t.remove()
	return true
}

// remove detaches the task from whichever slot currently holds it. A
// concurrent flush may relocate the task between this method's read of
// t.slot and the unlink attempt (the task moved to a finer layer's
// slot in the same instant a canceller observed the old one) so the
// read-unlink pair is retried until either no slot is recorded, or the
// unlink reports success.
func (t *Task) remove() {
	for {
		s := t.getSlot()
		if s == nil {
			return
		}
		if s.Remove(t) {
			return
		}
	}
}
