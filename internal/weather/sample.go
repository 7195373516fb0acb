package weather

import (
	"time"
)

// Sample is a point-in-time weather reading for one location. Values are in
// the units the client was configured with. A Sample is immutable once
// returned by a fetch.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	CityName    string    `json:"city_name,omitempty"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     float64   `json:"wind_deg"`
	Clouds      float64   `json:"clouds"`
	Rain        float64   `json:"rain"`
	Snow        float64   `json:"snow"`
	Condition   string    `json:"condition,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Precipitation is the combined rain and snow reading. It is derived on
// demand and never stored as its own field.
func (s *Sample) Precipitation() float64 {
	return s.Rain + s.Snow
}
