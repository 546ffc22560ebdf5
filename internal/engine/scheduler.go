package engine

import "time"

// Timer is a pending call created by a Scheduler.
type Timer interface {
	// Stop prevents the call from running. It reports whether the call
	// was stopped before it ran.
	Stop() bool
}

// Scheduler runs a function once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realScheduler uses the runtime timer.
type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is the default Scheduler.
var RealScheduler Scheduler = realScheduler{}
