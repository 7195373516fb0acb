package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/weatheralert/internal/alert"
	"github.com/example/weatheralert/internal/history"
	"github.com/example/weatheralert/internal/logger"
	"github.com/example/weatheralert/internal/metrics"
	"github.com/example/weatheralert/internal/notify"
	"github.com/example/weatheralert/internal/state"
	"github.com/example/weatheralert/internal/weather"
	"github.com/example/weatheralert/pkg/config"
)

// runtime wires the engine to its collaborators for the check and service
// commands. The history store and episode store are optional; when absent
// the corresponding features degrade with a log line instead of failing.
type runtime struct {
	cfg      *config.Config
	settings *config.Settings
	engine   *alert.Engine
	store    *history.Store
	episodes *state.Store
	notify   notify.Multi
	log      zerolog.Logger
}

// newRuntime builds the engine and collaborators from configuration. The
// episode tracker is seeded from the episode store when one is configured,
// so repeated check invocations and service restarts do not re-notify
// episodes that never stopped matching.
func newRuntime(ctx context.Context, cfg *config.Config, settings *config.Settings) (*runtime, error) {
	log := logger.WithComponent("runtime")

	fetcher, err := weather.NewClient(settings.API.Units)
	if err != nil {
		return nil, err
	}

	r := &runtime{
		cfg:      cfg,
		settings: settings,
		log:      log,
	}

	tracker := alert.NewTracker()

	if cfg.Redis.Enabled {
		episodes := state.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := episodes.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("episode store unreachable, tracking in memory only")
			episodes.Close()
		} else {
			r.episodes = episodes
			if snapshot, err := episodes.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to load episode snapshot")
			} else {
				tracker.Seed(snapshot)
				log.Debug().Int("episodes", tracker.Len()).Msg("episode tracker seeded")
			}
		}
	}

	r.engine = alert.NewEngine(fetcher, tracker)

	if cfg.Database.Enabled {
		store, err := history.Open(cfg.Database.ConnectionString())
		if err != nil {
			log.Warn().Err(err).Msg("history store unavailable, continuing without it")
		} else if err := store.EnsureSchema(); err != nil {
			log.Warn().Err(err).Msg("failed to ensure history schema, continuing without it")
			store.Close()
		} else {
			r.store = store
		}
	}

	if settings.Notifications.Desktop.Enabled {
		r.notify = append(r.notify, notify.NewDesktopNotifier())
	}
	if settings.Notifications.Email.Enabled {
		r.notify = append(r.notify, notify.NewEmailNotifier(&cfg.SMTP))
	}
	if settings.Notifications.Kafka.Enabled {
		r.notify = append(r.notify, notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts))
	}

	return r, nil
}

// close releases collaborator connections.
func (r *runtime) close() {
	if r.store != nil {
		r.store.Close()
	}
	if r.episodes != nil {
		r.episodes.Close()
	}
	for _, n := range r.notify {
		if closer, ok := n.(interface{ Close() error }); ok {
			closer.Close()
		}
	}
}

// runCycle executes one check cycle and forwards its output: samples and
// decisions to the history store, notify decisions to the notifiers, and
// the episode snapshot to the episode store. Collaborator failures are
// logged, never propagated; a completed cycle is a success even when
// individual locations failed to fetch.
func (r *runtime) runCycle(ctx context.Context) error {
	now := time.Now()
	locations := r.settings.EngineLocations()

	res := r.engine.RunCycle(ctx, locations, r.settings.QuietWindow(), now)

	for _, ls := range res.Samples {
		r.recordSample(ls)
	}

	notified := 0
	for _, d := range res.Decisions {
		if r.store != nil {
			if err := r.store.RecordDecision(d); err != nil {
				metrics.HistoryWriteErrorsTotal.Inc()
				r.log.Warn().Err(err).Msg("failed to record decision")
			}
		}

		if d.Outcome != alert.OutcomeNotify {
			continue
		}

		ev := notify.NewEvent(d, r.settings.API.Units)
		r.notify.Send(ctx, ev)
		notified++

		if r.store != nil {
			if err := r.store.RecordAlert(ev.ID, d); err != nil {
				metrics.HistoryWriteErrorsTotal.Inc()
				r.log.Warn().Err(err).Msg("failed to record alert")
			}
		}
	}

	if r.episodes != nil {
		if err := r.episodes.Save(ctx, r.engine.Tracker().Snapshot()); err != nil {
			r.log.Warn().Err(err).Msg("failed to save episode snapshot")
		}
	}

	r.log.Info().
		Int("locations", len(locations)).
		Int("decisions", len(res.Decisions)).
		Int("notified", notified).
		Int("fetch_failures", res.FetchFailures).
		Msg("check cycle completed")

	return nil
}

func (r *runtime) recordSample(ls alert.LocationSample) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordSample(ls.Location, ls.Sample); err != nil {
		metrics.HistoryWriteErrorsTotal.Inc()
		r.log.Warn().Err(err).Str("location", ls.Location).Msg("failed to record sample")
	}
}
