package schedule

import (
	"testing"
	"time"
)

func TestTimerQueue_FiresDueTask(t *testing.T) {
	tq := NewTimerQueue()
	tq.Start()
	defer tq.Stop()

	fired := make(chan struct{})
	if err := tq.Schedule("cleanup", time.Now().Add(20*time.Millisecond), func() {
		close(fired)
	}); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire")
	}

	if tq.Pending() != 0 {
		t.Errorf("fired task should leave the queue, pending = %d", tq.Pending())
	}
}

func TestTimerQueue_OrderByRunTime(t *testing.T) {
	tq := NewTimerQueue()
	tq.Start()
	defer tq.Stop()

	order := make(chan string, 2)
	now := time.Now()

	// Scheduled out of order; the earlier run time fires first.
	tq.Schedule("late", now.Add(80*time.Millisecond), func() { order <- "late" })
	tq.Schedule("early", now.Add(20*time.Millisecond), func() { order <- "early" })

	for _, want := range []string{"early", "late"} {
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("fired %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("task %q did not fire", want)
		}
	}
}

func TestTimerQueue_Cancel(t *testing.T) {
	tq := NewTimerQueue()
	tq.Start()
	defer tq.Stop()

	fired := make(chan struct{}, 1)
	tq.Schedule("cleanup", time.Now().Add(30*time.Millisecond), func() {
		fired <- struct{}{}
	})

	if !tq.Cancel("cleanup") {
		t.Fatal("Cancel reported unknown ID for a scheduled task")
	}
	if tq.Cancel("cleanup") {
		t.Error("second Cancel should report unknown ID")
	}

	select {
	case <-fired:
		t.Fatal("cancelled task fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerQueue_ScheduleReplacesSameID(t *testing.T) {
	tq := NewTimerQueue()
	tq.Start()
	defer tq.Stop()

	fired := make(chan string, 2)
	now := time.Now()

	tq.Schedule("cleanup", now.Add(20*time.Millisecond), func() { fired <- "first" })
	tq.Schedule("cleanup", now.Add(40*time.Millisecond), func() { fired <- "second" })

	if tq.Pending() != 1 {
		t.Fatalf("same ID should replace, pending = %d", tq.Pending())
	}

	select {
	case got := <-fired:
		if got != "second" {
			t.Fatalf("replaced task fired %q, want %q", got, "second")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("replacement task did not fire")
	}
}

func TestTimerQueue_ScheduleAfterStop(t *testing.T) {
	tq := NewTimerQueue()
	tq.Start()
	tq.Stop()

	if err := tq.Schedule("x", time.Now(), func() {}); err != ErrTimerStopped {
		t.Errorf("Schedule after Stop = %v, want ErrTimerStopped", err)
	}
}

func TestNextDailyRun(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 30, 0, 0, time.Local)

	next := NextDailyRun(now, "00:05")
	want := time.Date(2026, time.March, 15, 0, 5, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("NextDailyRun past today's slot = %v, want %v", next, want)
	}

	next = NextDailyRun(now, "23:00")
	want = time.Date(2026, time.March, 14, 23, 0, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("NextDailyRun before today's slot = %v, want %v", next, want)
	}

	next = NextDailyRun(now, "not-a-time")
	if !next.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("malformed time should fall back to tomorrow, got %v", next)
	}
}
