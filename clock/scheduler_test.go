package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TestSchedulerFiresInDeadlineOrder verifies callbacks run only when due and in order
func TestSchedulerFiresInDeadlineOrder(t *testing.T) {
	mc := NewMockClock(testEpoch)
	s := NewScheduler(mc)

	var order []string
	s.After(2*time.Second, func() { order = append(order, "b") })
	s.After(1*time.Second, func() { order = append(order, "a") })
	s.After(2*time.Second, func() { order = append(order, "c") })

	if n := s.Run(); n != 0 {
		t.Fatalf("Expected nothing due at start, fired %d", n)
	}

	mc.Advance(1500 * time.Millisecond)
	if n := s.Run(); n != 1 {
		t.Fatalf("Expected 1 timer at 1.5s, fired %d", n)
	}

	mc.Advance(time.Second)
	s.Run()

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
	if s.Pending() != 0 {
		t.Errorf("Expected empty queue, got %d pending", s.Pending())
	}
}

// TestTimerStop verifies cancelled timers never fire and Stop reports correctly
func TestTimerStop(t *testing.T) {
	mc := NewMockClock(testEpoch)
	s := NewScheduler(mc)

	fired := false
	tm := s.After(time.Second, func() { fired = true })
	other := s.After(time.Second, func() {})

	if !tm.Pending() {
		t.Error("Expected timer to be pending")
	}
	if !tm.Stop() {
		t.Error("Expected first Stop to cancel the timer")
	}
	if tm.Stop() {
		t.Error("Expected second Stop to report nothing cancelled")
	}

	mc.Advance(2 * time.Second)
	s.Run()

	if fired {
		t.Error("Cancelled timer fired")
	}
	if other.Pending() {
		t.Error("Expected uncancelled timer to have fired")
	}
	if other.Stop() {
		t.Error("Stop after firing should return false")
	}
}

// TestSchedulerNestedScheduling verifies callbacks can queue further timers
func TestSchedulerNestedScheduling(t *testing.T) {
	mc := NewMockClock(testEpoch)
	s := NewScheduler(mc)

	count := 0
	s.After(0, func() {
		count++
		s.After(0, func() { count++ })
		s.After(time.Second, func() { count++ })
	})

	if n := s.Run(); n != 2 {
		t.Errorf("Expected 2 immediate callbacks, got %d", n)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	if s.Pending() != 1 {
		t.Fatalf("Expected 1 pending timer, got %d", s.Pending())
	}
	mc.Advance(time.Second)
	if n := s.Run(); n != 1 || count != 3 {
		t.Errorf("Expected deferred callback at 1s, fired %d, count %d", n, count)
	}
}

// TestNilTimerStop verifies Stop on a nil handle is safe
func TestNilTimerStop(t *testing.T) {
	var tm *Timer
	if tm.Stop() {
		t.Error("Expected nil timer Stop to return false")
	}
	if tm.Pending() {
		t.Error("Expected nil timer not pending")
	}
}
