package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/weatheralert/internal/alert"
	"github.com/example/weatheralert/internal/weather"
)

// Store is the audit/history database. The core never reads it during a
// cycle; it records samples and alert events and serves the history and
// stats commands.
type Store struct {
	*sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(connectionString string) (*Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return &Store{db}, nil
}

// EnsureSchema creates the history tables and indexes if they do not exist.
func (s *Store) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS weather_samples (
			id BIGSERIAL PRIMARY KEY,
			location TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			temperature DOUBLE PRECISION,
			feels_like DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			pressure DOUBLE PRECISION,
			wind_speed DOUBLE PRECISION,
			clouds DOUBLE PRECISION,
			rain DOUBLE PRECISION,
			snow DOUBLE PRECISION,
			received_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_location_time
			ON weather_samples (location, recorded_at)`,
		`CREATE TABLE IF NOT EXISTS alert_events (
			id BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL,
			location TEXT NOT NULL,
			condition TEXT NOT NULL,
			operator TEXT NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			observed_value DOUBLE PRECISION NOT NULL,
			message TEXT NOT NULL,
			triggered_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_location_time
			ON alert_events (location, triggered_at)`,
		`CREATE TABLE IF NOT EXISTS rule_decisions (
			id BIGSERIAL PRIMARY KEY,
			location TEXT NOT NULL,
			condition TEXT NOT NULL,
			operator TEXT NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			outcome TEXT NOT NULL,
			observed_value DOUBLE PRECISION NOT NULL,
			decided_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}

// RecordSample stores one fetched weather sample.
func (s *Store) RecordSample(location string, sample *weather.Sample) error {
	query := `
		INSERT INTO weather_samples (
			location, recorded_at, temperature, feels_like, humidity,
			pressure, wind_speed, clouds, rain, snow
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.Exec(
		query,
		location,
		sample.Timestamp,
		sample.Temperature,
		sample.FeelsLike,
		sample.Humidity,
		sample.Pressure,
		sample.WindSpeed,
		sample.Clouds,
		sample.Rain,
		sample.Snow,
	)
	return err
}

// RecordAlert stores a delivered alert event.
func (s *Store) RecordAlert(eventID string, d alert.Decision) error {
	query := `
		INSERT INTO alert_events (
			event_id, location, condition, operator, threshold,
			observed_value, message, triggered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.Exec(
		query,
		eventID,
		d.Location,
		string(d.Rule.Condition),
		string(d.Rule.Operator),
		d.Rule.Threshold,
		d.Value,
		d.Rule.Message,
		d.At,
	)
	return err
}

// RecordDecision stores the outcome of one rule evaluation, including
// suppressed and non-matching ones.
func (s *Store) RecordDecision(d alert.Decision) error {
	query := `
		INSERT INTO rule_decisions (
			location, condition, operator, threshold, outcome,
			observed_value, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.Exec(
		query,
		d.Location,
		string(d.Rule.Condition),
		string(d.Rule.Operator),
		d.Rule.Threshold,
		string(d.Outcome),
		d.Value,
		d.At,
	)
	return err
}

// AlertRecord is one row of alert history.
type AlertRecord struct {
	Location    string
	Condition   string
	Operator    string
	Threshold   float64
	Value       float64
	Message     string
	TriggeredAt time.Time
}

// ListAlerts returns alerts from the last N days, newest first. An empty
// location matches all locations.
func (s *Store) ListAlerts(location string, days int) ([]AlertRecord, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT location, condition, operator, threshold, observed_value, message, triggered_at
		FROM alert_events
		WHERE triggered_at > $1
	`
	args := []interface{}{cutoff}
	if location != "" {
		query += ` AND location = $2`
		args = append(args, location)
	}
	query += ` ORDER BY triggered_at DESC`

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AlertRecord
	for rows.Next() {
		var r AlertRecord
		if err := rows.Scan(
			&r.Location,
			&r.Condition,
			&r.Operator,
			&r.Threshold,
			&r.Value,
			&r.Message,
			&r.TriggeredAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// ConditionStats summarizes one condition at one location over a period.
type ConditionStats struct {
	Min   sql.NullFloat64
	Max   sql.NullFloat64
	Avg   sql.NullFloat64
	Count int
}

// conditionExpr maps a condition to its SQL expression over weather_samples.
// The whitelist keeps user input out of the query text.
var conditionExpr = map[alert.Condition]string{
	alert.CondTemperature:   "temperature",
	alert.CondFeelsLike:     "feels_like",
	alert.CondHumidity:      "humidity",
	alert.CondPressure:      "pressure",
	alert.CondWind:          "wind_speed",
	alert.CondClouds:        "clouds",
	alert.CondPrecipitation: "(rain + snow)",
	alert.CondRain:          "rain",
	alert.CondSnow:          "snow",
}

// Stats aggregates min/max/avg for a condition at a location over the last
// N days of stored samples.
func (s *Store) Stats(location string, condition alert.Condition, days int) (*ConditionStats, error) {
	expr, ok := conditionExpr[condition]
	if !ok {
		return nil, &alert.UnknownConditionError{Name: string(condition)}
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	query := fmt.Sprintf(`
		SELECT MIN(%[1]s), MAX(%[1]s), AVG(%[1]s), COUNT(*)
		FROM weather_samples
		WHERE location = $1 AND recorded_at > $2
	`, expr)

	var stats ConditionStats
	err := s.QueryRow(query, location, cutoff).Scan(
		&stats.Min,
		&stats.Max,
		&stats.Avg,
		&stats.Count,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// Cleanup deletes samples, alert events, and decisions older than the
// retention window.
func (s *Store) Cleanup(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var total int64
	for _, query := range []string{
		`DELETE FROM weather_samples WHERE recorded_at < $1`,
		`DELETE FROM alert_events WHERE triggered_at < $1`,
		`DELETE FROM rule_decisions WHERE decided_at < $1`,
	} {
		res, err := s.Exec(query, cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to clean up history: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	return total, nil
}
