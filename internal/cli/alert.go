package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/weatheralert/internal/alert"
	"github.com/example/weatheralert/pkg/config"
)

// AddAlertCmd adds a threshold rule to a location. Condition and operator
// are validated here, at authoring time; rules already stored only degrade
// to skips if the enums ever change underneath them.
func AddAlertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-alert LOCATION CONDITION OPERATOR VALUE MESSAGE",
		Short: "Add a threshold alert to a location",
		Long: fmt.Sprintf(`Add a threshold alert to a location.

Conditions: %s
Operators:  %s`, joinConditions(), joinOperators()),
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			locationName := args[0]

			condition, err := alert.ParseCondition(args[1])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, joinConditions())
			}
			operator, err := alert.ParseOperator(args[2])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, joinOperators())
			}
			value, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid threshold %q: %w", args[3], err)
			}
			message := args[4]

			settings, err := config.LoadSettings(flagSettings)
			if err != nil {
				return err
			}

			rule := config.AlertRule{
				Condition: string(condition),
				Operator:  string(operator),
				Value:     value,
				Message:   message,
			}
			if err := settings.AddAlert(locationName, rule); err != nil {
				return err
			}
			if err := settings.Save(flagSettings); err != nil {
				return err
			}

			fmt.Printf("✓ Added alert %s %s %v to %q\n", condition, operator, value, locationName)
			return nil
		},
	}
}

func joinConditions() string {
	names := make([]string, len(alert.Conditions))
	for i, c := range alert.Conditions {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func joinOperators() string {
	names := make([]string, len(alert.Operators))
	for i, op := range alert.Operators {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}
