package alert

import (
	"fmt"
	"strconv"
)

// Condition names a weather attribute a rule tests.
type Condition string

const (
	CondTemperature   Condition = "temperature"
	CondFeelsLike     Condition = "feels_like"
	CondHumidity      Condition = "humidity"
	CondPressure      Condition = "pressure"
	CondWind          Condition = "wind"
	CondClouds        Condition = "clouds"
	CondPrecipitation Condition = "precipitation"
	CondRain          Condition = "rain"
	CondSnow          Condition = "snow"
)

// Conditions lists every known condition in a stable order.
var Conditions = []Condition{
	CondTemperature,
	CondFeelsLike,
	CondHumidity,
	CondPressure,
	CondWind,
	CondClouds,
	CondPrecipitation,
	CondRain,
	CondSnow,
}

// ParseCondition validates a user-supplied condition name.
func ParseCondition(s string) (Condition, error) {
	for _, c := range Conditions {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &UnknownConditionError{Name: s}
}

// Operator is the comparison a rule applies to an extracted value.
type Operator string

const (
	OpAbove  Operator = "above"
	OpBelow  Operator = "below"
	OpEquals Operator = "equals"
)

// Operators lists every known operator in a stable order.
var Operators = []Operator{OpAbove, OpBelow, OpEquals}

// ParseOperator validates a user-supplied operator name.
func ParseOperator(s string) (Operator, error) {
	for _, op := range Operators {
		if string(op) == s {
			return op, nil
		}
	}
	return "", &UnknownOperatorError{Name: s}
}

// Rule is a single-condition threshold check attached to a location.
// Condition and Operator are carried as-is from configuration; stale names
// are surfaced as per-rule skips at evaluation time, not load failures.
type Rule struct {
	Condition Condition
	Operator  Operator
	Threshold float64
	Message   string
}

// Location is one monitored place with its configured rules, evaluated in
// configured order.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Rules     []Rule
}

// RuleKey is the identity of a rule for episode tracking. Two rules with the
// same tuple but different messages are the same episode subject.
type RuleKey struct {
	Location  string
	Condition Condition
	Operator  Operator
	Threshold float64
}

// Key returns the episode identity of a rule at a location.
func (r Rule) Key(location string) RuleKey {
	return RuleKey{
		Location:  location,
		Condition: r.Condition,
		Operator:  r.Operator,
		Threshold: r.Threshold,
	}
}

func (k RuleKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%s",
		k.Location, k.Condition, k.Operator, strconv.FormatFloat(k.Threshold, 'g', -1, 64))
}

// UnknownConditionError reports a condition name outside the fixed enum.
type UnknownConditionError struct {
	Name string
}

func (e *UnknownConditionError) Error() string {
	return fmt.Sprintf("unknown condition: %q", e.Name)
}

// UnknownOperatorError reports an operator name outside the fixed enum.
type UnknownOperatorError struct {
	Name string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator: %q", e.Name)
}
