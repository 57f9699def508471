// Package clock supplies the current time, in Unix seconds, to ballot
// operations that record when a phase began.
package clock

import (
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() int64
}

// System reads the wall clock.
type System struct{}

func (System) Now() int64 {
	return time.Now().Unix()
}

// Manual is a clock that only moves when told to. It never goes backwards.
type Manual struct {
	now atomic.Int64
}

func NewManual(start int64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

func (m *Manual) Now() int64 {
	return m.now.Load()
}

// Advance moves the clock forward by d seconds; negative values are ignored.
func (m *Manual) Advance(d int64) int64 {
	if d < 0 {
		d = 0
	}
	return m.now.Add(d)
}
