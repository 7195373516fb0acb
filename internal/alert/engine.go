package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/weatheralert/internal/logger"
	"github.com/example/weatheralert/internal/metrics"
	"github.com/example/weatheralert/internal/weather"
)

// Outcome classifies the result of evaluating one rule in one cycle.
type Outcome string

const (
	// OutcomeNotify: the rule matched, a new episode started, delivery is
	// not suppressed. The caller should notify.
	OutcomeNotify Outcome = "notify"
	// OutcomeSuppressedQuiet: a new episode started during quiet hours. The
	// episode is active, so the end of quiet hours does not re-trigger it.
	OutcomeSuppressedQuiet Outcome = "suppressed_quiet"
	// OutcomeSuppressedDuplicate: the rule matched but its episode was
	// already active.
	OutcomeSuppressedDuplicate Outcome = "suppressed_duplicate"
	// OutcomeNoMatch: the rule did not match; any active episode ended.
	OutcomeNoMatch Outcome = "no_match"
)

// Decision is the per-(location, rule) output of a check cycle.
type Decision struct {
	Location string
	Rule     Rule
	Outcome  Outcome
	Value    float64
	At       time.Time
}

// LocationSample pairs a fetched sample with the location it belongs to.
type LocationSample struct {
	Location string
	Sample   *weather.Sample
}

// CycleResult is everything one check cycle produced. Decisions appear in
// configured order (locations, then rules), so cycles are reproducible.
// FetchFailures counts locations skipped because their sample could not be
// obtained.
type CycleResult struct {
	Decisions     []Decision
	Samples       []LocationSample
	FetchFailures int
}

// WeatherFetcher obtains a current sample for a coordinate pair. Failures
// are per-location: the engine logs them and continues with the rest.
type WeatherFetcher interface {
	Fetch(ctx context.Context, latitude, longitude float64) (*weather.Sample, error)
}

// Engine runs check cycles: fetch a sample per location, evaluate each rule,
// feed the result through the episode tracker and the quiet-hours gate, and
// emit a decision per rule. The engine mutates tracker state as a side
// effect; forwarding notify decisions and recording history is the caller's
// job.
type Engine struct {
	fetcher WeatherFetcher
	tracker *Tracker
	log     zerolog.Logger
}

// NewEngine creates an alert engine around a fetcher and an episode tracker.
func NewEngine(fetcher WeatherFetcher, tracker *Tracker) *Engine {
	return &Engine{
		fetcher: fetcher,
		tracker: tracker,
		log:     logger.WithComponent("engine"),
	}
}

// Tracker exposes the engine's episode tracker for seeding and snapshots.
func (e *Engine) Tracker() *Tracker { return e.tracker }

type fetchResult struct {
	sample *weather.Sample
	err    error
}

// RunCycle performs one full check cycle over a configuration snapshot.
// Samples for all locations are fetched concurrently; evaluation then runs
// sequentially in configured order so decisions are deterministic and
// tracker updates are ordered. One call is one cycle; call again for the
// next tick.
func (e *Engine) RunCycle(ctx context.Context, locations []Location, quiet QuietWindow, now time.Time) CycleResult {
	started := time.Now()

	results := make([]fetchResult, len(locations))
	var wg sync.WaitGroup
	for i, loc := range locations {
		wg.Add(1)
		go func(i int, loc Location) {
			defer wg.Done()
			sample, err := e.fetcher.Fetch(ctx, loc.Latitude, loc.Longitude)
			results[i] = fetchResult{sample: sample, err: err}
		}(i, loc)
	}
	wg.Wait()

	var res CycleResult
	for i, loc := range locations {
		if err := results[i].err; err != nil {
			res.FetchFailures++
			metrics.FetchErrorsTotal.WithLabelValues(loc.Name).Inc()
			e.log.Warn().Err(err).Str("location", loc.Name).Msg("skipping location: fetch failed")
			continue
		}

		sample := results[i].sample
		res.Samples = append(res.Samples, LocationSample{Location: loc.Name, Sample: sample})

		for _, rule := range loc.Rules {
			decision, ok := e.evaluateRule(loc.Name, rule, sample, quiet, now)
			if !ok {
				continue
			}
			res.Decisions = append(res.Decisions, decision)
			metrics.DecisionsTotal.WithLabelValues(string(decision.Outcome)).Inc()
		}
	}

	metrics.CheckCyclesTotal.Inc()
	metrics.CheckCycleDuration.Observe(time.Since(started).Seconds())

	return res
}

// evaluateRule turns one rule plus one sample into a decision. Rules with a
// stale condition or operator name are skipped with a warning; they must not
// abort the remaining rules for the location.
func (e *Engine) evaluateRule(location string, rule Rule, sample *weather.Sample, quiet QuietWindow, now time.Time) (Decision, bool) {
	value, err := ExtractValue(sample, rule.Condition)
	if err != nil {
		e.ruleSkip(location, rule, err)
		return Decision{}, false
	}

	match, err := EvaluateRule(value, rule.Operator, rule.Threshold)
	if err != nil {
		e.ruleSkip(location, rule, err)
		return Decision{}, false
	}

	_, newOnset := e.tracker.Transition(rule.Key(location), match, now)

	outcome := OutcomeNoMatch
	switch {
	case !match:
		outcome = OutcomeNoMatch
	case !newOnset:
		outcome = OutcomeSuppressedDuplicate
	case quiet.Contains(now):
		// The episode is already active at this point: once quiet hours
		// end, a still-matching condition stays suppressed as a duplicate.
		outcome = OutcomeSuppressedQuiet
	default:
		outcome = OutcomeNotify
		e.tracker.MarkNotified(rule.Key(location), now)
	}

	return Decision{
		Location: location,
		Rule:     rule,
		Outcome:  outcome,
		Value:    value,
		At:       now,
	}, true
}

func (e *Engine) ruleSkip(location string, rule Rule, err error) {
	reason := "unknown_condition"
	var opErr *UnknownOperatorError
	if errors.As(err, &opErr) {
		reason = "unknown_operator"
	}
	metrics.RuleErrorsTotal.WithLabelValues(reason).Inc()
	e.log.Warn().
		Err(err).
		Str("location", location).
		Str("condition", string(rule.Condition)).
		Str("operator", string(rule.Operator)).
		Msg("skipping rule")
}
