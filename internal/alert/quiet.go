package alert

import (
	"fmt"
	"time"
)

// QuietWindow is a daily wall-clock window during which notification
// delivery is suppressed. Evaluation and episode tracking are unaffected.
type QuietWindow struct {
	Enabled bool
	Start   string // "HH:MM"
	End     string // "HH:MM"
}

// Contains reports whether now falls inside the quiet window. A window with
// Start after End wraps across midnight. Pure function of the clock time;
// the date component is ignored.
func (w QuietWindow) Contains(now time.Time) bool {
	if !w.Enabled {
		return false
	}

	start, err := minuteOfDay(w.Start)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(w.End)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()

	if start > end {
		// Overnight window, e.g. 23:00-07:00.
		return cur >= start || cur <= end
	}
	return cur >= start && cur <= end
}

// Validate checks that both bounds parse as HH:MM. Disabled windows are
// always valid.
func (w QuietWindow) Validate() error {
	if !w.Enabled {
		return nil
	}
	if _, err := minuteOfDay(w.Start); err != nil {
		return fmt.Errorf("invalid quiet hours start %q: %w", w.Start, err)
	}
	if _, err := minuteOfDay(w.End); err != nil {
		return fmt.Errorf("invalid quiet hours end %q: %w", w.End, err)
	}
	return nil
}

func minuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
