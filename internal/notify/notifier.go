package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/weatheralert/internal/alert"
	"github.com/example/weatheralert/internal/logger"
	"github.com/example/weatheralert/internal/metrics"
)

// Event is one deliverable alert: a notify decision plus the identifiers a
// downstream channel needs to render or route it.
type Event struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Condition string    `json:"condition"`
	Operator  string    `json:"operator"`
	Threshold float64   `json:"threshold"`
	Value     float64   `json:"value"`
	Message   string    `json:"message"`
	Units     string    `json:"units"`
	At        time.Time `json:"at"`
}

// NewEvent builds a deliverable event from a notify decision.
func NewEvent(d alert.Decision, units string) Event {
	return Event{
		ID:        uuid.NewString(),
		Location:  d.Location,
		Condition: string(d.Rule.Condition),
		Operator:  string(d.Rule.Operator),
		Threshold: d.Rule.Threshold,
		Value:     d.Value,
		Message:   d.Rule.Message,
		Units:     units,
		At:        d.At,
	}
}

// Title is the headline of the notification: the user's message, or a
// generic fallback when the rule has none.
func (e Event) Title() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Weather alert for %s", e.Location)
}

// Body renders the condition reading against its threshold with the right
// unit suffix, e.g. "Temperature is 27.0°C (threshold: 25.0°C)".
func (e Event) Body() string {
	suffix := unitSuffix(e.Condition, e.Units)
	return fmt.Sprintf("%s: %s is %.1f%s (threshold: %s %.1f%s)",
		e.Location, conditionLabel(e.Condition), e.Value, suffix, e.Operator, e.Threshold, suffix)
}

// conditionLabel turns "feels_like" into "Feels Like" for display.
func conditionLabel(condition string) string {
	words := strings.Split(condition, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func unitSuffix(condition, units string) string {
	imperial := units == "imperial"
	switch condition {
	case "temperature", "feels_like":
		if imperial {
			return "°F"
		}
		return "°C"
	case "pressure":
		return " hPa"
	case "humidity", "clouds":
		return "%"
	case "wind":
		if imperial {
			return " mph"
		}
		return " m/s"
	case "precipitation", "rain", "snow":
		if imperial {
			return " in"
		}
		return " mm"
	default:
		return ""
	}
}

// Notifier delivers one alert event. Delivery is best effort; errors are for
// the caller to log, never to abort a cycle on.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

// Multi fans an event out to every configured channel. Each channel failure
// is logged and counted; none propagate.
type Multi []Notifier

// Send delivers ev on all channels.
func (m Multi) Send(ctx context.Context, ev Event) {
	log := logger.WithComponent("notify")
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			metrics.NotificationsTotal.WithLabelValues(n.Name(), "failed").Inc()
			log.Warn().Err(err).Str("channel", n.Name()).Str("event_id", ev.ID).Msg("notification failed")
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.Name(), "sent").Inc()
	}
}
