// Package idle implements the dashboard's fixed-window inactivity timeout:
// a warning timer and a hard-logout timer armed together when the
// authenticated view activates. User activity never resets the window; the
// timers run wall-clock from activation until they fire or the view
// deactivates.
package idle

import (
	"sync"
	"time"
)

// Timer arms two independent one-shot timers. The warning always fires
// before the logout because its duration is required to be shorter.
type Timer struct {
	mu     sync.Mutex
	warn   *time.Timer
	logout *time.Timer
	armed  bool
}

// NewTimer creates a disarmed timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Start arms both timers. onWarn fires after warnAfter, onLogout after
// logoutAfter. Re-entering the view calls Start again; any previously armed
// timers are cancelled first so a stale activation can never log out a
// fresh one.
func (t *Timer) Start(warnAfter, logoutAfter time.Duration, onWarn, onLogout func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.armed = true
	t.warn = time.AfterFunc(warnAfter, func() {
		if t.stillArmed() {
			onWarn()
		}
	})
	t.logout = time.AfterFunc(logoutAfter, func() {
		if t.stillArmed() {
			onLogout()
		}
	})
}

// Stop cancels both pending timers. Called on every dashboard exit path;
// a timer that survives teardown would fire a logout against a view that is
// no longer present.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Armed reports whether the timers are currently pending.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

func (t *Timer) stopLocked() {
	if t.warn != nil {
		t.warn.Stop()
		t.warn = nil
	}
	if t.logout != nil {
		t.logout.Stop()
		t.logout = nil
	}
	t.armed = false
}

// stillArmed double-checks under the lock before a callback runs. AfterFunc
// can race with Stop: the function may already be scheduled when Stop
// returns, and it must then do nothing.
func (t *Timer) stillArmed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}
