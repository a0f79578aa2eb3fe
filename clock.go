package timingwheel

import "time"

// Clock supplies the current time, in milliseconds, used for every
// expiry comparison in the wheel. Unit tests substitute a fake clock
// to pin "now" for immediate due/not-due checks.
type Clock interface {
	NowMS() int64
}

// SystemClock is the default Clock, backed by the wall clock.
type SystemClock struct{}

// NowMS returns the current time in milliseconds since the Unix epoch.
func (SystemClock) NowMS() int64 {
	return time.Now().UnixMilli()
}
