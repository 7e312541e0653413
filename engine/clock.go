package engine

import "time"

// Clock measures elapsed session seconds from a fixed start instant. The
// now hook defaults to time.Now; record and frames modes install a stepped
// source so every frame advances by exactly 1/fps.
type Clock struct {
	start time.Time
	last  float64
	now   func() time.Time
}

// NewClock returns a clock started at the current instant of the given
// source, or of time.Now when the source is nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{start: now(), now: now}
}

// Elapsed returns seconds since start. It never decreases, even if the
// underlying source steps backward.
func (c *Clock) Elapsed() float64 {
	s := c.now().Sub(c.start).Seconds()
	if s < c.last {
		return c.last
	}
	c.last = s
	return s
}

// Restart rebases the clock so Elapsed counts from zero again.
func (c *Clock) Restart() {
	c.start = c.now()
	c.last = 0
}
