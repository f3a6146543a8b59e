package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/steelpath/steelpath/pkg/policy"
)

func newPoliciesCommand() *cobra.Command {
	var paths []string

	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List technology adoption policies",
		Long: `List the built-in Rego policies, plus any loaded from the given paths.

Policies gate which technologies a plant may adopt in a given year. A
policy blocks a candidate by adding an entry to its deny set.`,
		Example: `  # List the built-in policies
  steelpath policies

  # Include custom policy files
  steelpath policies --path ./policies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := policy.NewEngine(log.Logger)
			if err != nil {
				return err
			}
			if len(paths) > 0 {
				if err := engine.LoadPolicies(cmd.Context(), paths); err != nil {
					return err
				}
			}

			policies := engine.ListPolicies()
			sort.Slice(policies, func(i, j int) bool { return policies[i].Name < policies[j].Name })

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(policies)
			}

			for _, p := range policies {
				state := "disabled"
				if p.Enabled {
					state = "enabled"
				}
				fmt.Printf("%-20s  %-8s  %-8s  %s\n", p.Name, p.Severity, state, p.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&paths, "path", nil, "policy files or directories to load")

	return cmd
}
