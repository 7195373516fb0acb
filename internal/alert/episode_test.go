package alert

import (
	"testing"
	"time"
)

func testKey() RuleKey {
	return RuleKey{
		Location:  "Rio de Janeiro",
		Condition: CondTemperature,
		Operator:  OpAbove,
		Threshold: 25,
	}
}

func TestTracker_OnsetSequence(t *testing.T) {
	tracker := NewTracker()
	key := testKey()
	now := time.Now()

	// Matches across consecutive cycles: F F T T T F T.
	matches := []bool{false, false, true, true, true, false, true}
	wantOnsets := []bool{false, false, true, false, false, false, true}

	for i, match := range matches {
		_, onset := tracker.Transition(key, match, now.Add(time.Duration(i)*time.Minute))
		if onset != wantOnsets[i] {
			t.Errorf("cycle %d: onset = %v, want %v", i, onset, wantOnsets[i])
		}
	}
}

func TestTracker_NoSecondOnsetWithoutReset(t *testing.T) {
	tracker := NewTracker()
	key := testKey()
	now := time.Now()

	onsets := 0
	for i := 0; i < 100; i++ {
		if _, onset := tracker.Transition(key, true, now); onset {
			onsets++
		}
	}
	if onsets != 1 {
		t.Errorf("expected exactly one onset for an unbroken match streak, got %d", onsets)
	}
}

func TestTracker_IndependentRules(t *testing.T) {
	tracker := NewTracker()
	now := time.Now()

	keyA := testKey()
	keyB := testKey()
	keyB.Threshold = 30

	if _, onset := tracker.Transition(keyA, true, now); !onset {
		t.Error("first match for rule A should be an onset")
	}
	if _, onset := tracker.Transition(keyB, true, now); !onset {
		t.Error("first match for rule B should be an onset despite active rule A")
	}

	tracker.Transition(keyA, false, now)
	if _, onset := tracker.Transition(keyA, true, now); !onset {
		t.Error("rule A should re-onset after a reset")
	}
	if _, onset := tracker.Transition(keyB, true, now); onset {
		t.Error("rule B was never reset, expected no onset")
	}
}

func TestTracker_MarkNotified(t *testing.T) {
	tracker := NewTracker()
	key := testKey()
	now := time.Now()

	tracker.Transition(key, true, now)
	tracker.MarkNotified(key, now)

	snap := tracker.Snapshot()
	ep, ok := snap[key]
	if !ok {
		t.Fatal("expected active episode in snapshot")
	}
	if !ep.LastNotifiedAt.Equal(now) {
		t.Errorf("LastNotifiedAt = %v, want %v", ep.LastNotifiedAt, now)
	}
}

func TestTracker_SnapshotSeedRoundTrip(t *testing.T) {
	tracker := NewTracker()
	key := testKey()
	now := time.Now()

	tracker.Transition(key, true, now)
	snap := tracker.Snapshot()

	seeded := NewTracker()
	seeded.Seed(snap)

	// A seeded still-matching episode is a continuation, not a new onset.
	if _, onset := seeded.Transition(key, true, now.Add(time.Minute)); onset {
		t.Error("seeded active episode must not re-onset")
	}
}

func TestTracker_SeedIgnoresInactive(t *testing.T) {
	seeded := NewTracker()
	seeded.Seed(map[RuleKey]Episode{
		testKey(): {Active: false},
	})

	if seeded.Len() != 0 {
		t.Errorf("expected inactive entries to be dropped, got %d episodes", seeded.Len())
	}
}

func TestTracker_DropLocation(t *testing.T) {
	tracker := NewTracker()
	now := time.Now()

	keyRio := testKey()
	keyOslo := testKey()
	keyOslo.Location = "Oslo"

	tracker.Transition(keyRio, true, now)
	tracker.Transition(keyOslo, true, now)

	tracker.DropLocation("Rio de Janeiro")

	if _, onset := tracker.Transition(keyRio, true, now); !onset {
		t.Error("dropped location should start a fresh episode")
	}
	if _, onset := tracker.Transition(keyOslo, true, now); onset {
		t.Error("other locations must keep their episodes")
	}
}
