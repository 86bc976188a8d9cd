package session

import "github.com/prepbox/examsim-backend/internal/model"

// EventType enumerates controller events streamed to view consumers.
type EventType string

const (
	// EventTick is emitted once per timer decrement.
	EventTick EventType = "tick"
	// EventPhase is emitted on every phase transition.
	EventPhase EventType = "phase"
)

// Event is a controller notification for the countdown display.
type Event struct {
	Type         EventType   `json:"event"`
	Phase        model.Phase `json:"phase"`
	RemainingSec int         `json:"remaining_seconds,omitempty"`
}

// Subscribe registers a buffered event channel. The returned cancel
// function removes and closes it.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Event, 16)
	c.subscribers[ch] = struct{}{}

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// publishLocked fans an event out to all subscribers. Slow consumers
// drop events instead of blocking the state machine. Caller holds mu.
func (c *Controller) publishLocked(ev Event) {
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
