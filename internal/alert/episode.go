package alert

import (
	"sync"
	"time"
)

// Episode is the tracked state for one rule identity: a maximal run of
// consecutive matching cycles. An episode produces at most one notification.
type Episode struct {
	Active         bool      `json:"active"`
	StartedAt      time.Time `json:"started_at"`
	LastNotifiedAt time.Time `json:"last_notified_at,omitempty"`
}

// Tracker is the per-rule episode state machine. Two states per rule
// identity: inactive (the initial state, represented by absence from the
// map) and active. Transitions are serialized by an internal mutex so
// concurrent evaluators stay consistent.
//
// State lives in process memory; unless seeded from a snapshot, a restart
// may re-notify a condition that never stopped matching.
type Tracker struct {
	mu       sync.Mutex
	episodes map[RuleKey]*Episode
}

// NewTracker creates an empty episode tracker.
func NewTracker() *Tracker {
	return &Tracker{episodes: make(map[RuleKey]*Episode)}
}

// Transition feeds one evaluation result into the state machine and reports
// (active, newOnset):
//
//   - match with no active episode starts one: active=true, newOnset=true
//   - match with an active episode continues it: active=true, newOnset=false
//   - no match ends any active episode: active=false, newOnset=false
//
// An episode can never report a second onset without an intervening
// non-match for the same rule.
func (t *Tracker) Transition(key RuleKey, match bool, now time.Time) (active, newOnset bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ep, exists := t.episodes[key]

	if !match {
		if exists {
			delete(t.episodes, key)
		}
		return false, false
	}

	if exists && ep.Active {
		return true, false
	}

	t.episodes[key] = &Episode{Active: true, StartedAt: now}
	return true, true
}

// MarkNotified records the delivery timestamp on an active episode. Onsets
// suppressed by quiet hours never get one; the episode stays active either
// way.
func (t *Tracker) MarkNotified(key RuleKey, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ep, ok := t.episodes[key]; ok {
		ep.LastNotifiedAt = now
	}
}

// Snapshot returns a copy of all active episodes, for persistence.
func (t *Tracker) Snapshot() map[RuleKey]Episode {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := make(map[RuleKey]Episode, len(t.episodes))
	for k, ep := range t.episodes {
		snap[k] = *ep
	}
	return snap
}

// Seed replaces the tracker state with a previously captured snapshot.
// Inactive entries are ignored.
func (t *Tracker) Seed(snapshot map[RuleKey]Episode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.episodes = make(map[RuleKey]*Episode, len(snapshot))
	for k, ep := range snapshot {
		if !ep.Active {
			continue
		}
		copied := ep
		t.episodes[k] = &copied
	}
}

// DropLocation discards episode state for every rule of a location. Used
// when a location is deleted, so its rules cascade away cleanly.
func (t *Tracker) DropLocation(location string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for k := range t.episodes {
		if k.Location == location {
			delete(t.episodes, k)
		}
	}
}

// Len reports the number of active episodes.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.episodes)
}
