package verify

import (
	"sync"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/internal/flow"
)

const (
	// sweepInterval is how often the janitor looks for dead verifications.
	sweepInterval = time.Minute
	// expiredGrace is how long an expired verification stays listed, so the
	// frontend can still render "code expired, resend?" before the entry is
	// forgotten entirely.
	expiredGrace = 10 * time.Minute
)

type entry struct {
	timer   *flow.Countdown
	beganAt time.Time
}

// Registry tracks pending email verifications by their opaque verifyURL and
// runs the countdown for each. Once a countdown hits zero the portal refuses
// to submit that code upstream; only a resend restores the window. Abandoned
// verifications are swept after a grace period — signups where the user just
// closes the tab must not pile up forever.
type Registry struct {
	mu       sync.Mutex
	window   time.Duration
	seconds  int
	pending  map[string]*entry
	newTimer func(seconds int) *flow.Countdown

	done     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(window time.Duration) *Registry {
	r := &Registry{
		window:   window,
		seconds:  int(window.Seconds()),
		pending:  make(map[string]*entry),
		newTimer: flow.NewCountdown,
		done:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Begin starts (or restarts) the countdown for a verification. An existing
// timer under the same verifyURL is torn down first.
func (r *Registry) Begin(verifyURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.pending[verifyURL]; ok {
		old.timer.Stop()
	}
	r.pending[verifyURL] = &entry{
		timer:   r.newTimer(r.seconds),
		beganAt: time.Now(),
	}
}

// Remaining reports the seconds left for a verification. The second return
// is false for verifications this portal instance never saw; those are left
// to the upstream API to judge.
func (r *Registry) Remaining(verifyURL string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.pending[verifyURL]
	if !ok {
		return 0, false
	}
	return e.timer.Remaining(), true
}

// Expired reports whether a known verification's window has closed.
func (r *Registry) Expired(verifyURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.pending[verifyURL]
	return ok && e.timer.Expired()
}

// Reset restores the full window after a successful resend.
func (r *Registry) Reset(verifyURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.pending[verifyURL]
	if !ok {
		return false
	}
	e.timer.Reset()
	e.beganAt = time.Now()
	return true
}

// Complete tears down the countdown once the verification succeeded or the
// flow was abandoned.
func (r *Registry) Complete(verifyURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.pending[verifyURL]; ok {
		e.timer.Stop()
		delete(r.pending, verifyURL)
	}
}

// Shutdown stops the janitor and every pending countdown.
func (r *Registry) Shutdown() {
	r.stopOnce.Do(func() { close(r.done) })

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, e := range r.pending {
		e.timer.Stop()
		delete(r.pending, key)
	}
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(time.Now())
		case <-r.done:
			return
		}
	}
}

// sweep forgets verifications whose window closed longer than the grace
// period ago. Live windows and freshly expired ones are kept.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, e := range r.pending {
		if !e.timer.Expired() {
			continue
		}
		if now.Sub(e.beganAt) < r.window+expiredGrace {
			continue
		}
		e.timer.Stop()
		delete(r.pending, key)
	}
}
