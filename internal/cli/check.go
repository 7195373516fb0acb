package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/weatheralert/pkg/config"
)

// CheckCmd runs a single check cycle and exits. The exit code is zero on a
// completed cycle even when individual locations failed to fetch; only
// configuration failures are fatal.
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single weather check",
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

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, cfg, settings)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.runCycle(ctx)
		},
	}
}
