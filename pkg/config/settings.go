package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/weatheralert/internal/alert"
)

// Settings mutation errors.
var (
	ErrLocationExists   = errors.New("location already exists")
	ErrLocationNotFound = errors.New("location not found")
	ErrAlertExists      = errors.New("alert already exists")
)

// ConfigError marks malformed settings data. It is fatal at load time; a
// check cycle never starts on top of it.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Settings is the user-editable settings file: what to monitor and how
// often. It is loaded once per invocation and handed to the engine as a
// snapshot; edits take effect on the next load.
type Settings struct {
	API           APISettings   `json:"api"`
	Locations     []Location    `json:"locations"`
	Notifications Notifications `json:"notifications"`
	Preferences   Preferences   `json:"preferences"`
}

type APISettings struct {
	Service string `json:"service"`
	Units   string `json:"units"`
}

// Location is one monitored place. Name is the unique, case-sensitive key.
type Location struct {
	Name      string      `json:"name"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Alerts    []AlertRule `json:"alerts"`
}

// AlertRule is one stored threshold rule. Condition and operator stay raw
// strings here: a rule that has gone stale against the known enums is
// skipped with a warning at evaluation time, not rejected at load.
type AlertRule struct {
	Condition string  `json:"condition"`
	Operator  string  `json:"operator"`
	Value     float64 `json:"value"`
	Message   string  `json:"message"`
}

type Notifications struct {
	Desktop Channel `json:"desktop"`
	Email   Channel `json:"email"`
	Kafka   Channel `json:"kafka"`
}

type Channel struct {
	Enabled bool `json:"enabled"`
}

type Preferences struct {
	CheckIntervalMinutes int        `json:"check_interval_minutes"`
	QuietHours           QuietHours `json:"quiet_hours"`
	HistoryDays          int        `json:"history_days"`
}

type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() *Settings {
	return &Settings{
		API: APISettings{
			Service: "openweathermap",
			Units:   "metric",
		},
		Locations: []Location{},
		Notifications: Notifications{
			Desktop: Channel{Enabled: true},
		},
		Preferences: Preferences{
			CheckIntervalMinutes: 30,
			QuietHours: QuietHours{
				Enabled: true,
				Start:   "22:00",
				End:     "07:00",
			},
			HistoryDays: 30,
		},
	}
}

// LoadSettings reads and validates the settings file, creating a default one
// if it does not exist yet.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		settings := DefaultSettings()
		if err := settings.Save(path); err != nil {
			return nil, err
		}
		return settings, nil
	}
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to read settings file: %w", err)}
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("settings file is not valid JSON: %w", err)}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Save writes the settings file, creating parent directories as needed.
func (s *Settings) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Validate checks structural settings invariants. Stale condition and
// operator names are deliberately not checked here; they degrade to
// per-rule skips at evaluation time.
func (s *Settings) Validate() error {
	if s.Preferences.CheckIntervalMinutes < 1 {
		return &ConfigError{Err: fmt.Errorf("check_interval_minutes must be at least 1, got %d", s.Preferences.CheckIntervalMinutes)}
	}
	if s.Preferences.HistoryDays < 1 {
		return &ConfigError{Err: fmt.Errorf("history_days must be at least 1, got %d", s.Preferences.HistoryDays)}
	}

	if err := s.QuietWindow().Validate(); err != nil {
		return &ConfigError{Err: err}
	}

	seen := make(map[string]bool, len(s.Locations))
	for _, loc := range s.Locations {
		if loc.Name == "" {
			return &ConfigError{Err: errors.New("location with empty name")}
		}
		if seen[loc.Name] {
			return &ConfigError{Err: fmt.Errorf("duplicate location name %q", loc.Name)}
		}
		seen[loc.Name] = true

		if err := validateCoordinates(loc.Latitude, loc.Longitude); err != nil {
			return &ConfigError{Err: fmt.Errorf("location %q: %w", loc.Name, err)}
		}
	}

	return nil
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", longitude)
	}
	return nil
}

// FindLocation returns the location with the given name, or nil.
func (s *Settings) FindLocation(name string) *Location {
	for i := range s.Locations {
		if s.Locations[i].Name == name {
			return &s.Locations[i]
		}
	}
	return nil
}

// AddLocation appends a new monitored location.
func (s *Settings) AddLocation(name string, latitude, longitude float64) error {
	if name == "" {
		return &ConfigError{Err: errors.New("location name must not be empty")}
	}
	if s.FindLocation(name) != nil {
		return ErrLocationExists
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return &ConfigError{Err: err}
	}

	s.Locations = append(s.Locations, Location{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		Alerts:    []AlertRule{},
	})
	return nil
}

// RemoveLocation deletes a location and, with it, all its alert rules.
func (s *Settings) RemoveLocation(name string) bool {
	for i := range s.Locations {
		if s.Locations[i].Name == name {
			s.Locations = append(s.Locations[:i], s.Locations[i+1:]...)
			return true
		}
	}
	return false
}

// AddAlert appends a rule to a location. Rules with the same
// (condition, operator, value) tuple are the same episode subject no matter
// their message, so duplicates are rejected.
func (s *Settings) AddAlert(locationName string, rule AlertRule) error {
	loc := s.FindLocation(locationName)
	if loc == nil {
		return ErrLocationNotFound
	}

	for _, existing := range loc.Alerts {
		if existing.Condition == rule.Condition &&
			existing.Operator == rule.Operator &&
			existing.Value == rule.Value {
			return ErrAlertExists
		}
	}

	loc.Alerts = append(loc.Alerts, rule)
	return nil
}

// CheckInterval returns the configured check cadence.
func (s *Settings) CheckInterval() time.Duration {
	return time.Duration(s.Preferences.CheckIntervalMinutes) * time.Minute
}

// QuietWindow converts the quiet hours preference for the engine.
func (s *Settings) QuietWindow() alert.QuietWindow {
	return alert.QuietWindow{
		Enabled: s.Preferences.QuietHours.Enabled,
		Start:   s.Preferences.QuietHours.Start,
		End:     s.Preferences.QuietHours.End,
	}
}

// EngineLocations converts the stored locations into the engine's snapshot
// form, preserving configured order.
func (s *Settings) EngineLocations() []alert.Location {
	locations := make([]alert.Location, 0, len(s.Locations))
	for _, loc := range s.Locations {
		rules := make([]alert.Rule, 0, len(loc.Alerts))
		for _, a := range loc.Alerts {
			rules = append(rules, alert.Rule{
				Condition: alert.Condition(a.Condition),
				Operator:  alert.Operator(a.Operator),
				Threshold: a.Value,
				Message:   a.Message,
			})
		}
		locations = append(locations, alert.Location{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Rules:     rules,
		})
	}
	return locations
}
