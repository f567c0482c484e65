package idle

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWarningFiresBeforeLogout(t *testing.T) {
	tm := NewTimer()

	var warnAt, logoutAt atomic.Int64
	done := make(chan struct{})

	tm.Start(30*time.Millisecond, 60*time.Millisecond,
		func() { warnAt.Store(time.Now().UnixNano()) },
		func() { logoutAt.Store(time.Now().UnixNano()); close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logout timer never fired")
	}

	w, l := warnAt.Load(), logoutAt.Load()
	if w == 0 {
		t.Fatal("warning timer never fired")
	}
	if w >= l {
		t.Errorf("warning fired at %d, logout at %d; warning must come first", w, l)
	}
}

func TestStopCancelsBothTimers(t *testing.T) {
	tm := NewTimer()

	var fired atomic.Int32
	tm.Start(20*time.Millisecond, 40*time.Millisecond,
		func() { fired.Add(1) },
		func() { fired.Add(1) })

	// Deactivate well before either timer elapses.
	tm.Stop()

	if tm.Armed() {
		t.Error("timer reports armed after Stop")
	}

	time.Sleep(80 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("%d callback(s) fired after Stop; want 0", n)
	}
}

func TestRestartReplacespreviousActivation(t *testing.T) {
	tm := NewTimer()

	var staleLogout atomic.Int32
	tm.Start(10*time.Millisecond, 20*time.Millisecond,
		func() {},
		func() { staleLogout.Add(1) })

	// Re-entering the view restarts the window; the first activation's
	// timers must not fire.
	done := make(chan struct{})
	tm.Start(30*time.Millisecond, 50*time.Millisecond,
		func() {},
		func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second activation's logout never fired")
	}
	if staleLogout.Load() != 0 {
		t.Error("first activation's logout fired after restart")
	}
}

func TestArmedLifecycle(t *testing.T) {
	tm := NewTimer()
	if tm.Armed() {
		t.Error("new timer should be disarmed")
	}

	tm.Start(time.Hour, 2*time.Hour, func() {}, func() {})
	if !tm.Armed() {
		t.Error("timer should be armed after Start")
	}

	tm.Stop()
	if tm.Armed() {
		t.Error("timer should be disarmed after Stop")
	}

	// Stop on a disarmed timer is a no-op.
	tm.Stop()
}
