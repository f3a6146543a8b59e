package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/steelpath/steelpath/pkg/config"
	"github.com/steelpath/steelpath/pkg/policy"
)

func newValidateCommand() *cobra.Command {
	var checkPolicies bool

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file",
		Long: `Validate a scenario file without running it.

This command checks:
  - YAML syntax and unknown fields
  - Field constraints (year range, ranking mode, plant data)
  - Technology and resource names against the master lists
  - Rego policy compilation when --policies is given`,
		Example: `  # Validate a scenario
  steelpath validate scenarios/baseline.yaml

  # Also compile the scenario's policy files
  steelpath validate scenarios/baseline.yaml --policies`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.NewLoader().Load(args[0])
			if err != nil {
				return err
			}
			sc := &loaded.Scenario

			if checkPolicies && len(sc.PolicyPaths) > 0 {
				engine, err := policy.NewEngine(log.Logger)
				if err != nil {
					return err
				}
				if err := engine.LoadPolicies(cmd.Context(), sc.PolicyPaths); err != nil {
					return err
				}
			}

			fmt.Printf("Scenario %q is valid: %d plants, %d TCO rows, %d abatement rows, years %d-%d\n",
				sc.Name, len(sc.Data.Plants), len(sc.Data.TCO), len(sc.Data.Abatement), sc.YearStart, sc.YearEnd)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkPolicies, "policies", false, "compile the scenario's Rego policy files")

	return cmd
}
