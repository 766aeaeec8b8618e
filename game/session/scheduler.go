package session

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	// Stop prevents future runs. It reports whether the timer was still active.
	Stop() bool
}

// Scheduler runs callbacks later. Callbacks run on their own goroutine and
// must not assume anything about the caller's state.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// ClockScheduler schedules callbacks on the wall clock
type ClockScheduler struct{}

// AfterFunc runs f once after d
func (ClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Every runs f every d until stopped
func (ClockScheduler) Every(d time.Duration, f func()) Timer {
	t := &repeating{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type repeating struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *repeating) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
