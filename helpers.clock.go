package main

import (
	"time"
)

var _ Clocker = (*Clock)(nil)

// Clocker abstracts the wall clock so timestamps can be fixed in tests.
type Clocker interface {
	Now() time.Time
}

// Clock is the real wall clock.
type Clock struct {
	tz *time.Location
}

// NewClock builds the clock used for created/updated timestamps. It
// runs on UTC in production and on the local timezone in development.
func NewClock(isProd bool) *Clock {
	tz := time.Local
	if isProd {
		tz = time.UTC
	}
	return &Clock{tz: tz}
}

func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.tz)
}
