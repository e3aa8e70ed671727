package utils

import "time"

// Clock supplies the created/updated timestamps written by the repositories.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always reports At.
type FixedClock struct {
	At time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.At
}

func (c *FixedClock) Advance(d time.Duration) {
	c.At = c.At.Add(d)
}

// UnixMillis is the form timestamps take in the sqlite schema.
func UnixMillis(c Clock) int64 {
	return c.Now().UnixMilli()
}
