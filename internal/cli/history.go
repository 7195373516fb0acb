package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/weatheralert/internal/alert"
	"github.com/example/weatheralert/internal/history"
	"github.com/example/weatheralert/pkg/config"
)

func openHistoryStore() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("history store is not enabled (set DB_ENABLED=true)")
	}
	store, err := history.Open(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// HistoryCmd lists recently triggered alerts from the history store.
func HistoryCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history [LOCATION]",
		Short: "Show recently triggered alerts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) == 1 {
				location = args[0]
			}

			store, err := openHistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListAlerts(location, days)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Printf("No alerts in the last %d days\n", days)
				return nil
			}

			locName := color.New(color.FgCyan, color.Bold)
			faint := color.New(color.Faint)

			for _, r := range records {
				faint.Printf("%s  ", r.TriggeredAt.Format("2006-01-02 15:04"))
				locName.Print(r.Location)
				fmt.Printf("  %s %s %v (observed %v)", r.Condition, r.Operator, r.Threshold, r.Value)
				if r.Message != "" {
					faint.Printf("  %s", r.Message)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "how many days back to list")
	return cmd
}

// StatsCmd summarizes one condition at one location over stored samples.
func StatsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats LOCATION CONDITION",
		Short: "Show min/max/avg for a condition over stored history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := args[0]

			condition, err := alert.ParseCondition(args[1])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, joinConditions())
			}

			store, err := openHistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(location, condition, days)
			if err != nil {
				return err
			}

			if stats.Count == 0 {
				fmt.Printf("No samples for %q in the last %d days\n", location, days)
				return nil
			}

			fmt.Printf("%s / %s over %d days (%d samples):\n", location, condition, days, stats.Count)
			if stats.Min.Valid {
				fmt.Printf("  min: %.2f\n", stats.Min.Float64)
			}
			if stats.Max.Valid {
				fmt.Printf("  max: %.2f\n", stats.Max.Float64)
			}
			if stats.Avg.Valid {
				fmt.Printf("  avg: %.2f\n", stats.Avg.Float64)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "how many days of samples to aggregate")
	return cmd
}
