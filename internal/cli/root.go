package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/weatheralert/internal/logger"
	"github.com/example/weatheralert/internal/version"
	"github.com/example/weatheralert/pkg/config"
)

var (
	flagSettings string
	flagLogFile  string
)

// NewRootCmd builds the weatheralert command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "weatheralert",
		Short:   "Threshold-based weather alerting for configured locations",
		Version: version.String(),
		Long: `weatheralert samples current weather for a set of locations, evaluates
user-defined threshold rules, and notifies once per alert episode while
honoring quiet hours.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return logger.Init(cfg.Log.Level, flagLogFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flagSettings, "config", "c",
		filepath.Join("config", "config.json"), "path to the settings file")
	rootCmd.PersistentFlags().StringVarP(&flagLogFile, "log", "l",
		"", "path to a log file (in addition to stderr)")

	rootCmd.AddCommand(AddLocationCmd())
	rootCmd.AddCommand(RemoveLocationCmd())
	rootCmd.AddCommand(AddAlertCmd())
	rootCmd.AddCommand(ListCmd())
	rootCmd.AddCommand(CheckCmd())
	rootCmd.AddCommand(ServiceCmd())
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(StatsCmd())

	return rootCmd
}
