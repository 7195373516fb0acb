package alert

import (
	"testing"
	"time"
)

func clockTime(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.Local)
}

func TestQuietWindow_Overnight(t *testing.T) {
	w := QuietWindow{Enabled: true, Start: "23:00", End: "07:00"}

	tests := []struct {
		hour, minute int
		want         bool
	}{
		{23, 30, true},
		{3, 0, true},
		{12, 0, false},
		{23, 0, true},
		{7, 0, true},
		{7, 1, false},
		{22, 59, false},
	}

	for _, tt := range tests {
		if got := w.Contains(clockTime(tt.hour, tt.minute)); got != tt.want {
			t.Errorf("Contains(%02d:%02d) = %v, want %v", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestQuietWindow_SameDay(t *testing.T) {
	w := QuietWindow{Enabled: true, Start: "09:00", End: "17:00"}

	if !w.Contains(clockTime(12, 0)) {
		t.Error("12:00 should be inside 09:00-17:00")
	}
	if w.Contains(clockTime(8, 59)) {
		t.Error("08:59 should be outside 09:00-17:00")
	}
	if w.Contains(clockTime(17, 1)) {
		t.Error("17:01 should be outside 09:00-17:00")
	}
}

func TestQuietWindow_Disabled(t *testing.T) {
	w := QuietWindow{Enabled: false, Start: "00:00", End: "23:59"}

	if w.Contains(clockTime(12, 0)) {
		t.Error("disabled window must never be quiet")
	}
}

func TestQuietWindow_MalformedBounds(t *testing.T) {
	w := QuietWindow{Enabled: true, Start: "25:00", End: "07:00"}

	if w.Contains(clockTime(3, 0)) {
		t.Error("malformed window must not suppress")
	}
	if err := w.Validate(); err == nil {
		t.Error("Validate should reject malformed bounds")
	}
}

func TestQuietWindow_Validate(t *testing.T) {
	valid := QuietWindow{Enabled: true, Start: "22:00", End: "07:00"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate failed for valid window: %v", err)
	}

	disabled := QuietWindow{Enabled: false, Start: "nonsense", End: ""}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled windows are always valid, got: %v", err)
	}
}
