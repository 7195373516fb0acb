package alert

import (
	"github.com/example/weatheralert/internal/weather"
)

// ExtractValue maps a condition name to its numeric value in a sample.
// Precipitation is derived as rain + snow; a missing rain or snow reading is
// zero, never an error. The extractor assumes a complete sample; absent
// upstream fields are a fetch concern, not handled here.
func ExtractValue(sample *weather.Sample, condition Condition) (float64, error) {
	switch condition {
	case CondTemperature:
		return sample.Temperature, nil
	case CondFeelsLike:
		return sample.FeelsLike, nil
	case CondHumidity:
		return sample.Humidity, nil
	case CondPressure:
		return sample.Pressure, nil
	case CondWind:
		return sample.WindSpeed, nil
	case CondClouds:
		return sample.Clouds, nil
	case CondPrecipitation:
		return sample.Precipitation(), nil
	case CondRain:
		return sample.Rain, nil
	case CondSnow:
		return sample.Snow, nil
	default:
		return 0, &UnknownConditionError{Name: string(condition)}
	}
}

// EvaluateRule applies a comparison operator to a value and a threshold.
// Pure: same inputs always produce the same result.
//
// Equals uses exact float64 equality. Thresholds entered as decimals are
// subject to the usual float representation pitfalls; this is deliberate and
// documented rather than patched with an epsilon.
func EvaluateRule(value float64, operator Operator, threshold float64) (bool, error) {
	switch operator {
	case OpAbove:
		return value > threshold, nil
	case OpBelow:
		return value < threshold, nil
	case OpEquals:
		return value == threshold, nil
	default:
		return false, &UnknownOperatorError{Name: string(operator)}
	}
}
