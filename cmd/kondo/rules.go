package main

import (
	"fmt"

	"kondo/pkg/types"

	"github.com/spf13/cobra"
)

// NewRulesCmd creates the rules command
func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate the configured rules",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cfg.Rules) == 0 {
				fmt.Println("No rules configured.")
				return nil
			}
			for _, r := range cfg.Rules {
				state := successStyle.Render("enabled")
				if !r.Enabled {
					state = mutedStyle.Render("disabled")
				}
				fmt.Printf("%s (%s)\n", headerStyle.Render(r.Name), state)
				if r.Description != "" {
					fmt.Printf("  %s\n", r.Description)
				}
				for _, c := range r.Conditions {
					fmt.Printf("  when %s %s\n", c.Kind, conditionPayload(c))
				}
				fmt.Printf("  then %s\n", r.Outcome.Describe())
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the rules file for structural problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := cfg.Validate()
			if len(errs) == 0 {
				fmt.Println(successStyle.Render(fmt.Sprintf("%d rules, no problems found.", len(cfg.Rules))))
				return nil
			}
			for _, err := range errs {
				fmt.Println(errorStyle.Render(err.Error()))
			}
			return fmt.Errorf("%d problems found", len(errs))
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(validateCmd)
	return cmd
}

func conditionPayload(c types.Condition) string {
	switch c.Kind {
	case types.SizeGreaterThan:
		return fmt.Sprintf("%d bytes", c.Threshold)
	case types.CreatedBefore, types.ModifiedBefore:
		if c.Cutoff != nil {
			return c.Cutoff.Format("2006-01-02")
		}
		return "(no cutoff)"
	case types.IsDirectory:
		return ""
	default:
		return fmt.Sprintf("%q", c.Value)
	}
}
