package client

import (
	"context"
	"sync"
	"time"

	"trooba-http-transport/application/http/timeout"

	"github.com/benbjohnson/clock"
)

// deadline bounds one phase of a call at a time.
// When the active phase runs out it cancels the call's own context and
// remembers that it did, so the failure can be told apart from others.
type deadline struct {
	clock  clock.Clock
	cancel context.CancelFunc

	gen     uint64 // invalidates timers of finished phases
	timer   *clock.Timer
	started time.Time
	expired bool
	mu      sync.Mutex // guards the fields above
}

func newDeadline(clock clock.Clock, cancel context.CancelFunc) *deadline {
	return &deadline{clock: clock, cancel: cancel}
}

// arm starts phase. An unbounded phase only records its start.
func (d *deadline) arm(phase timeout.Phase, spec timeout.Spec) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	d.started = d.clock.Now()
	d.expired = false

	if limit, ok := spec.Resolve(phase); ok {
		d.timer = d.clock.AfterFunc(limit, func() { d.fire(gen) })
	}
}

func (d *deadline) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// Phase already finished.
		d.mu.Unlock()
		return
	}
	d.expired = true
	d.mu.Unlock()

	d.cancel()
}

// disarm ends the active phase and reports whether it ran out of time.
func (d *deadline) disarm() (elapsed time.Duration, expired bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	return d.clock.Since(d.started), d.expired
}
