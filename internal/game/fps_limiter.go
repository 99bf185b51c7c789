package game

import (
	"time"

	"reefview/internal/config"
)

// PausedFPS caps the loop while the animation is paused.
const PausedFPS = 30

// FPSLimiter paces the render loop to the configured frame cap.
type FPSLimiter struct {
	next  time.Time
	limit func() int
	sleep func(time.Duration)
}

// NewFPSLimiter returns a limiter reading the cap from the global settings.
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{limit: config.GetFPSLimit, sleep: time.Sleep}
}

// Interval returns the frame period for the current cap, or zero when
// uncapped.
func (f *FPSLimiter) Interval(paused bool) time.Duration {
	limit := f.limit()
	if paused && (limit <= 0 || limit > PausedFPS) {
		limit = PausedFPS
	}
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

// Wait blocks until the next frame is due. Uses a hybrid sleep/spin
// approach for precision on high caps.
func (f *FPSLimiter) Wait(paused bool) {
	target := f.Interval(paused)
	if target == 0 {
		f.next = time.Time{}
		return
	}

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			f.sleep(remaining - 200*time.Microsecond)
		}
		// spin out the last few microseconds
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
