package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/weatheralert/internal/logger"
	"github.com/example/weatheralert/internal/schedule"
	"github.com/example/weatheralert/pkg/config"
)

// ServiceCmd runs the unattended check loop until SIGINT/SIGTERM. The loop
// waits on a cancellable timer, so shutdown interrupts the current sleep
// instead of waiting out the interval.
func ServiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "service",
		Short: "Run as a continuous service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			settings, err := config.LoadSettings(flagSettings)
			if err != nil {
				return err
			}

			log := logger.WithComponent("service")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx, cfg, settings)
			if err != nil {
				return err
			}
			defer rt.close()

			// Metrics endpoint, service mode only.
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Warn().Err(err).Msg("metrics server stopped")
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				metricsSrv.Shutdown(shutdownCtx)
			}()

			// Daily retention sweep on the history store.
			if rt.store != nil {
				timers := schedule.NewTimerQueue()
				timers.Start()
				defer timers.Stop()
				scheduleCleanup(timers, rt, settings.Preferences.HistoryDays)
			}

			log.Info().
				Int("locations", len(settings.Locations)).
				Int("interval_minutes", settings.Preferences.CheckIntervalMinutes).
				Msg("service started")

			scheduler := schedule.New(settings.CheckInterval())
			err = scheduler.Run(ctx, rt.runCycle)
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("service stopped")
				return nil
			}
			return err
		},
	}
}

// scheduleCleanup runs the retention sweep shortly after midnight and
// reschedules itself for the next day.
func scheduleCleanup(timers *schedule.TimerQueue, rt *runtime, retentionDays int) {
	runAt := schedule.NextDailyRun(time.Now(), "00:05")
	timers.Schedule("history-cleanup", runAt, func() {
		removed, err := rt.store.Cleanup(retentionDays)
		if err != nil {
			rt.log.Warn().Err(err).Msg("history cleanup failed")
		} else if removed > 0 {
			rt.log.Info().Int64("rows", removed).Msg("history cleanup completed")
		}
		scheduleCleanup(timers, rt, retentionDays)
	})
}
