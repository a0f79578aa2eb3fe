package timingwheel

import (
	"context"
	"sync"
	"time"
)

// runState is the Driver's own lifecycle, distinct from any Task's.
// It is separate from the task state machine and exists only to make
// Start/Stop/Pause/Resume idempotent no-ops rather than panics.
type runState int

const (
	stateIdle runState = iota
	stateRunning
	statePaused
	stateStopped
)

// Driver is the hierarchical timer wheel's external surface: it owns
// the root Layer, the shared DelayQueue of slots, the task counter,
// and the single goroutine that advances the clock and flushes expired
// slots. Producer goroutines call AddTask/AddTaskAt concurrently with
// that goroutine and with each other; rw mediates the two roles.
type Driver struct {
	clock    Clock
	executor Executor
	logger   Logger

	root  *Layer
	queue *DelayQueue[*Slot]
	count taskCounter

	rw sync.RWMutex

	runMu  sync.Mutex
	run    runState
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Driver with the given innermost tick size and slot
// count per layer, starting from the clock's current instant (or
// WithStart's, if supplied). It does not start the driver goroutine;
// call Start for that.
func New(tick time.Duration, slotCount int, opts ...Option) (*Driver, error) {
	if tick <= 0 {
		return nil, newArgumentError("tick", "must be positive")
	}
	if tick < time.Millisecond {
		return nil, newArgumentError("tick", "must be at least one millisecond")
	}
	if slotCount <= 0 {
		return nil, newArgumentError("slotCount", "must be positive")
	}

	c := newConfig(opts...)

	startMS := c.startMS
	if !c.haveStart {
		startMS = c.clock.NowMS()
	}

	d := &Driver{
		clock:    c.clock,
		executor: c.executor,
		logger:   c.logger,
	}
	d.queue = NewDelayQueue[*Slot](c.clock, slotCount)
	d.root = newLayer(int64(tick/time.Millisecond), int64(slotCount), startMS, d.queue, &d.count)
	return d, nil
}

// AddTask schedules action to run after delay. It returns an
// ArgumentError if action is nil.
func (d *Driver) AddTask(delay time.Duration, action func()) (TaskHandle, error) {
	return d.AddTaskAt(d.clock.NowMS()+int64(delay/time.Millisecond), action)
}

// AddTaskAt schedules action to run at the given absolute millisecond
// instant. It returns an ArgumentError if action is nil.
func (d *Driver) AddTaskAt(expiryMS int64, action func()) (TaskHandle, error) {
	if action == nil {
		return nil, newArgumentError("action", "must not be nil")
	}

	t := newTask(expiryMS, action, d.logger, d.onActionPanic)

	d.rw.RLock()
	fits := d.root.Add(t)
	d.rw.RUnlock()

	if !fits {
		d.fireNow(t)
	}

	return t, nil
}

// TaskCount reports the number of tasks currently resident in some
// slot of the wheel, summed across every layer.
func (d *Driver) TaskCount() int64 {
	return d.count.load()
}

// Start begins the driver goroutine. Calling Start when already
// running or paused is a no-op; call Resume to restart after Pause.
func (d *Driver) Start() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.run == stateRunning || d.run == statePaused {
		return
	}
	d.startLocked()
}

func (d *Driver) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.run = stateRunning
	d.wg.Add(1)
	go d.loop(ctx)
}

// Stop halts the driver goroutine and discards every slot currently
// queued for advancement. Tasks still resident in wheel slots are left
// in Wait — Stop does not cancel or fire them. A subsequent Start
// leaves the wheel's needles where they were and runs a fresh
// Take/Poll loop over whatever is enqueued from then on. The discarded
// slots keep their expiry, so AddTask/AddTaskAt enqueues such a slot
// again only when it stores a different expiry in it; until then the
// tasks left in it are not fired. Resume after Stop is a no-op.
func (d *Driver) Stop() {
	d.runMu.Lock()
	if d.run != stateRunning && d.run != statePaused {
		d.runMu.Unlock()
		return
	}
	cancel := d.cancel
	d.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()

	d.runMu.Lock()
	d.queue.Clear()
	d.run = stateStopped
	d.runMu.Unlock()
}

// Pause halts the driver goroutine without discarding queued slots.
// Tasks whose expiry passes during the pause window fire immediately
// on Resume: the delay queue reports them as due (non-positive
// remaining delay) as soon as the loop resumes polling it, and the
// driver's flush loop treats that exactly like any other already-due
// slot. Calling Pause when not running is a no-op.
func (d *Driver) Pause() {
	d.runMu.Lock()
	if d.run != stateRunning {
		d.runMu.Unlock()
		return
	}
	cancel := d.cancel
	d.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()

	d.runMu.Lock()
	d.run = statePaused
	d.runMu.Unlock()
}

// Resume restarts the driver goroutine after Pause. Calling Resume
// when not paused is a no-op.
func (d *Driver) Resume() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.run != statePaused {
		return
	}
	d.startLocked()
}

// loop is the single long-running driver goroutine: block for a due
// slot, then under the writer lock, drain every already-due slot
// (stepping the wheel and flushing each one) before releasing it and
// blocking again.
func (d *Driver) loop(ctx context.Context) {
	defer d.wg.Done()
	for {
		slot, ok := d.queue.Take(ctx)
		if !ok {
			return
		}

		d.rw.Lock()
		d.drainFrom(slot)
		d.rw.Unlock()
	}
}

// drainFrom steps the wheel to slot's expiry and flushes it, then
// keeps polling (non-blocking) for any other slot that's already due
// — e.g. a coarse slot cascading several finer ones in quick
// succession — flushing each in turn before returning.
func (d *Driver) drainFrom(slot *Slot) {
	for {
		d.root.Step(slot.Expiration())
		slot.Flush(d.reinsert)

		next, ok := d.queue.Poll()
		if !ok {
			return
		}
		slot = next
	}
}

// reinsert is the forwarding function a flushed Slot calls per task.
// It re-adds the task starting from the root layer; a task whose
// expiry has now arrived (or that's no longer Wait, e.g. cancelled)
// fails to re-add, and — if it's still Wait — is handed to the
// executor to run. This one function implements both immediate firing
// and promotion between layers.
func (d *Driver) reinsert(t *Task) {
	if d.root.Add(t) {
		return
	}
	d.fireNow(t)
}

// fireNow hands a task straight to the executor if it's still Wait.
// Tasks that lost the race to a canceller are silently dropped.
func (d *Driver) fireNow(t *Task) {
	if t.State() != Wait {
		return
	}
	d.executor.Spawn(t.run)
}

func (d *Driver) onActionPanic(t *Task, recovered any) {
	d.logger.Printf("timingwheel: task %s action panicked: %v", t.ID(), recovered)
}
