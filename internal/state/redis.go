package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/weatheralert/internal/alert"
)

const (
	keyPrefix = "episode:"
	// Stale episodes expire on their own so a long-dead rule does not pin
	// state forever.
	episodeTTL = 7 * 24 * time.Hour
)

// episodeRecord is the persisted form of one active episode. The rule
// identity is stored in the value so loading never has to parse key strings.
type episodeRecord struct {
	Location       string    `json:"location"`
	Condition      string    `json:"condition"`
	Operator       string    `json:"operator"`
	Threshold      float64   `json:"threshold"`
	Active         bool      `json:"active"`
	StartedAt      time.Time `json:"started_at"`
	LastNotifiedAt time.Time `json:"last_notified_at,omitempty"`
}

// Store persists episode tracker snapshots in Redis so single-check
// invocations and service restarts do not re-notify episodes that never
// stopped matching.
type Store struct {
	client *redis.Client
}

// NewStore creates an episode store on the given Redis instance.
func NewStore(addr, password string, db int) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load retrieves the persisted episode snapshot.
func (s *Store) Load(ctx context.Context) (map[alert.RuleKey]alert.Episode, error) {
	keys, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list episode keys: %w", err)
	}

	snapshot := make(map[alert.RuleKey]alert.Episode, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Result()
		if err != nil {
			// Expired between KEYS and GET; skip.
			continue
		}

		var rec episodeRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}

		ruleKey := alert.RuleKey{
			Location:  rec.Location,
			Condition: alert.Condition(rec.Condition),
			Operator:  alert.Operator(rec.Operator),
			Threshold: rec.Threshold,
		}
		snapshot[ruleKey] = alert.Episode{
			Active:         rec.Active,
			StartedAt:      rec.StartedAt,
			LastNotifiedAt: rec.LastNotifiedAt,
		}
	}

	return snapshot, nil
}

// Save replaces the persisted snapshot with the given one. Episodes that
// ended since the last save are removed, so a seeded tracker never restores
// an episode that already closed.
func (s *Store) Save(ctx context.Context, snapshot map[alert.RuleKey]alert.Episode) error {
	existing, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("failed to list episode keys: %w", err)
	}

	keep := make(map[string]bool, len(snapshot))
	for key := range snapshot {
		keep[keyPrefix+key.String()] = true
	}

	for _, key := range existing {
		if !keep[key] {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("failed to delete stale episode: %w", err)
			}
		}
	}

	for key, ep := range snapshot {
		rec := episodeRecord{
			Location:       key.Location,
			Condition:      string(key.Condition),
			Operator:       string(key.Operator),
			Threshold:      key.Threshold,
			Active:         ep.Active,
			StartedAt:      ep.StartedAt,
			LastNotifiedAt: ep.LastNotifiedAt,
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal episode: %w", err)
		}
		if err := s.client.Set(ctx, keyPrefix+key.String(), data, episodeTTL).Err(); err != nil {
			return fmt.Errorf("failed to save episode: %w", err)
		}
	}

	return nil
}

// DeleteLocation removes persisted episodes for one location, cascading a
// location deletion into its tracked state.
func (s *Store) DeleteLocation(ctx context.Context, location string) error {
	keys, err := s.client.Keys(ctx, keyPrefix+location+":*").Result()
	if err != nil {
		return fmt.Errorf("failed to list episode keys: %w", err)
	}
	for _, key := range keys {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete episode: %w", err)
		}
	}
	return nil
}
