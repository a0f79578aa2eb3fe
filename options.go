package timingwheel

// defaultMaxInFlight bounds the default BoundedExecutor's concurrency
// when a caller doesn't supply their own Executor.
const defaultMaxInFlight = 256

// config collects the ambient, dependency-injection-style constructor
// options; New's required tick/slotCount arguments (mirroring spec's
// build(tick_duration, slot_count, start_ms?) signature) are validated
// directly by New, not through this options mechanism.
type config struct {
	startMS   int64
	haveStart bool
	clock     Clock
	executor  Executor
	logger    Logger
}

func newConfig(opts ...Option) config {
	c := config{
		clock:    SystemClock{},
		executor: NewBoundedExecutor(defaultMaxInFlight),
		logger:   nopLogger,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures ambient collaborators (clock, executor, logger,
// start instant) for a Driver constructed by New. Options that receive
// an invalid value are ignored rather than erroring, matching the
// retrieved timer-wheel library's functional-options convention.
type Option func(*config)

// WithStart pins the wheel's starting instant, in milliseconds, rather
// than deriving it from the clock at construction time. Mainly useful
// for tests that want a deterministic, tick-aligned origin.
func WithStart(startMS int64) Option {
	return func(c *config) {
		c.startMS = startMS
		c.haveStart = true
	}
}

// WithClock overrides the default wall clock. Ignored if clock is nil.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithExecutor overrides the default bounded-goroutine executor.
// Ignored if executor is nil.
func WithExecutor(executor Executor) Option {
	return func(c *config) {
		if executor != nil {
			c.executor = executor
		}
	}
}

// WithLogger overrides the default no-op logger. Ignored if logger is
// nil.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
