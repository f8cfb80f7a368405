package core

import "time"

type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock is handy in tests.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
