package flow

import (
	"sync"
	"time"
)

// Countdown counts a verification window down one second at a time. It clamps
// at zero and never goes negative; zero means the current code is dead and
// only a resend can continue the flow. The ticker goroutine is told to exit
// the moment the countdown reaches zero — a dead window never changes again —
// and Reset spins a fresh one up. Stop must be called when the owning flow
// ends.
type Countdown struct {
	mu        sync.Mutex
	initial   int
	remaining int
	interval  time.Duration
	stopped   bool
	// quit ends the current ticker goroutine; nil while none is running.
	quit chan struct{}
}

// NewCountdown starts a countdown from the given number of seconds.
func NewCountdown(seconds int) *Countdown {
	return newCountdown(seconds, time.Second)
}

func newCountdown(seconds int, interval time.Duration) *Countdown {
	c := &Countdown{
		initial:   seconds,
		remaining: seconds,
		interval:  interval,
	}
	c.mu.Lock()
	c.startLocked()
	c.mu.Unlock()
	return c
}

// startLocked launches the ticker goroutine unless one is already running,
// the countdown was stopped, or there is nothing left to count.
func (c *Countdown) startLocked() {
	if c.quit != nil || c.stopped || c.remaining == 0 {
		return
	}
	c.quit = make(chan struct{})
	go c.run(c.quit)
}

func (c *Countdown) run(quit chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.tick()
		case <-quit:
			return
		}
	}
}

func (c *Countdown) tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 && c.quit != nil {
		close(c.quit)
		c.quit = nil
	}
	return c.remaining
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Expired reports whether the current code's window has closed.
func (c *Countdown) Expired() bool {
	return c.Remaining() == 0
}

// Reset restores the full window after a successful resend, restarting the
// ticker if it already ran out. A stopped countdown stays frozen.
func (c *Countdown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.remaining = c.initial
	c.startLocked()
}

// Stop tears the countdown down. Safe to call more than once; after Stop no
// further ticks land.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.quit != nil {
		close(c.quit)
		c.quit = nil
	}
}
