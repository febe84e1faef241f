package async

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Value

	for _, term := range []string{"P", "Pa", "Par"} {
		term := term
		d.Trigger(func() {
			calls.Add(1)
			last.Store(term)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("callback ran %d times, want 1", got)
	}
	if got := last.Load(); got != "Par" {
		t.Fatalf("last term = %v, want Par", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("pending callback ran after Stop")
	}

	// triggers after Stop are ignored
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("trigger after Stop ran")
	}
}

func TestDebouncer_SeparatedTriggersEachFire(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Fatalf("callback ran %d times, want 2", got)
	}
}
