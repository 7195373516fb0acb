package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/weatheralert/internal/state"
	"github.com/example/weatheralert/pkg/config"
)

// AddLocationCmd adds a monitored location to the settings file.
func AddLocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-location NAME LATITUDE LONGITUDE",
		Short: "Add a new monitored location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			latitude, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[1], err)
			}
			longitude, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[2], err)
			}

			settings, err := config.LoadSettings(flagSettings)
			if err != nil {
				return err
			}

			if err := settings.AddLocation(name, latitude, longitude); err != nil {
				return err
			}
			if err := settings.Save(flagSettings); err != nil {
				return err
			}

			fmt.Printf("✓ Added location %q at %v, %v\n", name, latitude, longitude)
			return nil
		},
	}
}

// RemoveLocationCmd deletes a location; its alert rules and any persisted
// episode state cascade away with it.
func RemoveLocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-location NAME",
		Short: "Remove a location and all its alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			settings, err := config.LoadSettings(flagSettings)
			if err != nil {
				return err
			}

			if !settings.RemoveLocation(name) {
				return fmt.Errorf("location %q not found", name)
			}
			if err := settings.Save(flagSettings); err != nil {
				return err
			}

			// Drop persisted episodes so a re-added location starts clean.
			cfg, err := config.Load()
			if err == nil && cfg.Redis.Enabled {
				episodes := state.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
				defer episodes.Close()

				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				defer cancel()
				if err := episodes.DeleteLocation(ctx, name); err != nil {
					fmt.Printf("warning: failed to drop episode state: %v\n", err)
				}
			}

			fmt.Printf("✓ Removed location %q\n", name)
			return nil
		},
	}
}

// ListCmd prints all configured locations and their alerts.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured locations and alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(flagSettings)
			if err != nil {
				return err
			}

			if len(settings.Locations) == 0 {
				fmt.Println("No locations configured")
				return nil
			}

			heading := color.New(color.Bold)
			locName := color.New(color.FgCyan, color.Bold)
			faint := color.New(color.Faint)

			heading.Printf("Configured locations (%d):\n", len(settings.Locations))
			for i, loc := range settings.Locations {
				fmt.Printf("%d. ", i+1)
				locName.Print(loc.Name)
				faint.Printf(" (%v, %v)", loc.Latitude, loc.Longitude)
				fmt.Printf(" - %d alerts\n", len(loc.Alerts))

				for j, a := range loc.Alerts {
					fmt.Printf("   %d. %s %s %v", j+1, a.Condition, a.Operator, a.Value)
					if a.Message != "" {
						faint.Printf(" - %s", a.Message)
					}
					fmt.Println()
				}
			}

			return nil
		},
	}
}
