package session

import (
	"context"
	"time"
)

// runTicker is the timer goroutine for one arming. It decrements once
// per tick interval until the countdown it owns is disarmed or reaches
// zero. Disarming closes t.stop, so leaving the exam phase cancels the
// tick without any further decrements being observed.
func (c *Controller) runTicker(t *countdown) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if done := c.tick(t); done {
				return
			}
		}
	}
}

// tick applies one decrement, floored at zero. Reaching zero while
// armed fires the implicit submit exactly once: the submit itself
// disarms, and submitLocked is a no-op outside the exam phase, so a
// straggling tick can never re-fire it. Returns true when the goroutine
// should exit.
func (c *Controller) tick(t *countdown) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A disarm or re-arm may have raced the ticker wakeup; only the
	// currently armed countdown may decrement.
	if c.timer != t {
		return true
	}

	if t.remaining > 0 {
		t.remaining--
	}
	c.publishLocked(Event{Type: EventTick, Phase: c.phase, RemainingSec: t.remaining})

	if t.remaining == 0 {
		c.submitLocked(context.Background())
		return true
	}
	return false
}

// disarmLocked stops the armed countdown, if any. It does not reset
// any displayed value; consumers observe the phase change instead.
func (c *Controller) disarmLocked() {
	if c.timer == nil {
		return
	}
	close(c.timer.stop)
	c.timer = nil
}

// remainingLocked reports the countdown value and whether it is armed.
// Disarmed sessions display the full configured duration.
func (c *Controller) remainingLocked() (int, bool) {
	if c.timer != nil {
		return c.timer.remaining, true
	}
	return c.settings.DurationSec, false
}
