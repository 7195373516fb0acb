package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettings_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default settings file was not written: %v", err)
	}
	if settings.Preferences.CheckIntervalMinutes != 30 {
		t.Errorf("default interval = %d, want 30", settings.Preferences.CheckIntervalMinutes)
	}
	if !settings.Notifications.Desktop.Enabled {
		t.Error("desktop notifications should be enabled by default")
	}
	if !settings.Preferences.QuietHours.Enabled {
		t.Error("quiet hours should be enabled by default")
	}
}

func TestSettings_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	settings := DefaultSettings()
	if err := settings.AddLocation("Rio de Janeiro", -22.9068, -43.1729); err != nil {
		t.Fatalf("AddLocation failed: %v", err)
	}
	if err := settings.AddAlert("Rio de Janeiro", AlertRule{
		Condition: "temperature", Operator: "above", Value: 35, Message: "Heat warning",
	}); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}
	if err := settings.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	loc := loaded.FindLocation("Rio de Janeiro")
	if loc == nil {
		t.Fatal("saved location missing after reload")
	}
	if len(loc.Alerts) != 1 || loc.Alerts[0].Message != "Heat warning" {
		t.Errorf("saved alert rule missing after reload: %+v", loc.Alerts)
	}
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSettings(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for invalid JSON, got %v", err)
	}
}

func TestSettings_AddLocation(t *testing.T) {
	settings := DefaultSettings()

	if err := settings.AddLocation("Oslo", 59.9139, 10.7522); err != nil {
		t.Fatalf("AddLocation failed: %v", err)
	}
	if err := settings.AddLocation("Oslo", 59.9139, 10.7522); !errors.Is(err, ErrLocationExists) {
		t.Errorf("duplicate AddLocation = %v, want ErrLocationExists", err)
	}
	if err := settings.AddLocation("", 0, 0); err == nil {
		t.Error("empty name should be rejected")
	}
	if err := settings.AddLocation("BadLat", 91, 0); err == nil {
		t.Error("latitude 91 should be rejected")
	}
	if err := settings.AddLocation("BadLon", 0, -181); err == nil {
		t.Error("longitude -181 should be rejected")
	}
}

func TestSettings_RemoveLocation(t *testing.T) {
	settings := DefaultSettings()
	settings.AddLocation("Oslo", 59.9139, 10.7522)

	if !settings.RemoveLocation("Oslo") {
		t.Error("RemoveLocation should report success for an existing location")
	}
	if settings.RemoveLocation("Oslo") {
		t.Error("second RemoveLocation should report not found")
	}
	if settings.FindLocation("Oslo") != nil {
		t.Error("removed location still present")
	}
}

func TestSettings_AddAlert(t *testing.T) {
	settings := DefaultSettings()
	settings.AddLocation("Oslo", 59.9139, 10.7522)

	rule := AlertRule{Condition: "wind", Operator: "above", Value: 15, Message: "Windy"}
	if err := settings.AddAlert("Oslo", rule); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	// Same tuple with a different message is still the same rule.
	rule.Message = "Different wording"
	if err := settings.AddAlert("Oslo", rule); !errors.Is(err, ErrAlertExists) {
		t.Errorf("duplicate tuple AddAlert = %v, want ErrAlertExists", err)
	}

	// A different threshold is a distinct rule.
	rule.Value = 20
	if err := settings.AddAlert("Oslo", rule); err != nil {
		t.Errorf("distinct threshold AddAlert failed: %v", err)
	}

	if err := settings.AddAlert("Nowhere", rule); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("AddAlert for unknown location = %v, want ErrLocationNotFound", err)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero interval", func(s *Settings) { s.Preferences.CheckIntervalMinutes = 0 }},
		{"zero history days", func(s *Settings) { s.Preferences.HistoryDays = 0 }},
		{"bad quiet start", func(s *Settings) { s.Preferences.QuietHours.Start = "25:00" }},
		{"empty location name", func(s *Settings) {
			s.Locations = append(s.Locations, Location{Name: ""})
		}},
		{"duplicate location name", func(s *Settings) {
			s.Locations = append(s.Locations,
				Location{Name: "Oslo", Latitude: 59.9, Longitude: 10.7},
				Location{Name: "Oslo", Latitude: 59.9, Longitude: 10.7})
		}},
		{"latitude out of range", func(s *Settings) {
			s.Locations = append(s.Locations, Location{Name: "X", Latitude: -95})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(settings)

			err := settings.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Validate = %v, want ConfigError", err)
			}
		})
	}
}

func TestSettings_ValidateAcceptsStaleRuleNames(t *testing.T) {
	settings := DefaultSettings()
	settings.AddLocation("Oslo", 59.9139, 10.7522)
	settings.Locations[0].Alerts = []AlertRule{
		{Condition: "uv_index", Operator: "above", Value: 5},
	}

	// Stale names degrade to per-rule skips at evaluation time; load-time
	// validation accepts them.
	if err := settings.Validate(); err != nil {
		t.Errorf("Validate rejected stale rule names: %v", err)
	}
}

func TestSettings_EngineConversions(t *testing.T) {
	settings := DefaultSettings()
	settings.AddLocation("Oslo", 59.9139, 10.7522)
	settings.AddAlert("Oslo", AlertRule{Condition: "temperature", Operator: "below", Value: -10, Message: "Freezing"})

	if got := settings.CheckInterval(); got != 30*time.Minute {
		t.Errorf("CheckInterval = %v, want 30m", got)
	}

	quiet := settings.QuietWindow()
	if !quiet.Enabled || quiet.Start != "22:00" || quiet.End != "07:00" {
		t.Errorf("QuietWindow = %+v, want enabled 22:00-07:00", quiet)
	}

	locations := settings.EngineLocations()
	if len(locations) != 1 {
		t.Fatalf("EngineLocations returned %d locations, want 1", len(locations))
	}
	loc := locations[0]
	if loc.Name != "Oslo" || len(loc.Rules) != 1 {
		t.Fatalf("unexpected engine location: %+v", loc)
	}
	rule := loc.Rules[0]
	if string(rule.Condition) != "temperature" || string(rule.Operator) != "below" || rule.Threshold != -10 {
		t.Errorf("unexpected engine rule: %+v", rule)
	}
}
