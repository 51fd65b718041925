package main

import (
	"encoding/json"
	"fmt"
	"time"

	"kondo/internal/plan"
	"kondo/internal/scan"
	"kondo/pkg/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var asJSON bool
	var outFile string

	cmd := &cobra.Command{
		Use:   "plan [directory]",
		Short: "Evaluate rules against a directory and show the resulting plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, errs := buildPlan(args[0])
			for _, err := range errs {
				fmt.Printf("Warning: %v\n", err)
			}

			if outFile != "" {
				if err := savePlan(outFile, p); err != nil {
					return fmt.Errorf("error saving plan: %w", err)
				}
				fmt.Printf("Plan written to %s\n", outFile)
			}

			if asJSON {
				data, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Print(renderPlan(p))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the plan to a file for later apply")
	return cmd
}

// buildPlan scans a directory and plans it under the configured rules. The
// plan gets its identity here; planning itself stamps nothing.
func buildPlan(dir string) (types.ActionPlan, []error) {
	snapshots, errs := scan.Directory(dir)
	p := plan.Build(snapshots, cfg.Rules)
	p.ID = uuid.New().String()
	now := time.Now()
	p.CreatedAt = &now
	return p, errs
}
