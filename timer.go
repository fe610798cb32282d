package statemodel

import (
	"sync"
	"time"
)

// SoftwareTimer is a polled timer: the run loop calls Check once per tick,
// and the timer fires its timeout when the configured interval has elapsed,
// then rearms itself. Attaching a delivery target resets the elapsed clock.
type SoftwareTimer struct {
	name     string
	interval time.Duration

	mu     sync.Mutex
	target TimerTarget
	last   time.Time
}

// NewSoftwareTimer creates a detached software timer. The composed event name
// is <name>_timeout.
func NewSoftwareTimer(name string, interval time.Duration) *SoftwareTimer {
	return &SoftwareTimer{
		name:     name,
		interval: interval,
	}
}

// Name returns the timer's base name.
func (t *SoftwareTimer) Name() string { return t.name }

// SetDeliveryTarget attaches or, with nil, detaches the timer. Attaching
// starts a fresh interval.
func (t *SoftwareTimer) SetDeliveryTarget(target TimerTarget) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = target
	t.last = time.Now()
}

// Cancel discards the elapsed time, pushing the next expiry a full interval
// out.
func (t *SoftwareTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = time.Now()
}

// Check fires the timeout if the interval has elapsed, then rearms. Detached
// timers never fire.
func (t *SoftwareTimer) Check() {
	t.mu.Lock()
	if t.target == nil || time.Since(t.last) < t.interval {
		t.mu.Unlock()
		return
	}
	t.last = time.Now()
	target := t.target
	t.mu.Unlock()

	target.Timeout(t.name)
}

// HardwareTimer expires out of band rather than being polled: once started it
// delivers <name>_timeout to its target on every interval until cancelled or
// detached. Delivery goes through the machine's event queue, so expiry never
// runs handler code from the timer goroutine.
type HardwareTimer struct {
	name     string
	interval time.Duration

	mu     sync.Mutex
	target TimerTarget
	timer  *time.Timer
}

// NewHardwareTimer creates a detached, unstarted hardware timer.
func NewHardwareTimer(name string, interval time.Duration) *HardwareTimer {
	return &HardwareTimer{
		name:     name,
		interval: interval,
	}
}

// Name returns the timer's base name.
func (t *HardwareTimer) Name() string { return t.name }

// SetDeliveryTarget attaches or, with nil, detaches the timer. Detaching
// cancels any pending expiration.
func (t *HardwareTimer) SetDeliveryTarget(target TimerTarget) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = target
	if target == nil {
		t.stopLocked()
	}
}

// Start arms the timer. Restarting resets the interval.
func (t *HardwareTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.timer = time.AfterFunc(t.interval, t.fire)
}

// Cancel stops the timer without detaching it; Start arms it again.
func (t *HardwareTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *HardwareTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *HardwareTimer) fire() {
	t.mu.Lock()
	target := t.target
	if target != nil {
		t.timer = time.AfterFunc(t.interval, t.fire)
	}
	t.mu.Unlock()

	if target != nil {
		target.Timeout(t.name)
	}
}
