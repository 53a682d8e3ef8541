package backend

import (
	"sync/atomic"
	"time"
)

// ActivityClock is an IdleSource fed by input events: idle time is the
// time since the last Touch.
type ActivityClock struct {
	last atomic.Int64
}

func NewActivityClock(now time.Time) *ActivityClock {
	c := &ActivityClock{}
	c.Touch(now)
	return c
}

func (c *ActivityClock) Touch(now time.Time) {
	c.last.Store(now.UnixNano())
}

func (c *ActivityClock) Idle(now time.Time) time.Duration {
	d := now.Sub(time.Unix(0, c.last.Load()))
	if d < 0 {
		return 0
	}
	return d
}
