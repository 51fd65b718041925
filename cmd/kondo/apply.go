package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kondo/internal/execute"
	"kondo/internal/trash"
	"kondo/pkg/types"

	"github.com/spf13/cobra"
)

// NewApplyCmd creates the apply command
func NewApplyCmd() *cobra.Command {
	var planFile string
	var dryRun bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply [directory]",
		Short: "Apply a plan and record every action in the execution log",
		Long: `Apply builds a plan for the directory (or loads one saved with 'plan -o'),
asks for approval, and applies it exactly as shown. Every action lands in an
append-only execution log that 'kondo undo' can reverse.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p types.ActionPlan
			switch {
			case planFile != "":
				var err error
				p, err = loadPlan(planFile)
				if err != nil {
					return err
				}
			case len(args) == 1:
				var errs []error
				p, errs = buildPlan(args[0])
				for _, err := range errs {
					fmt.Printf("Warning: %v\n", err)
				}
			default:
				return fmt.Errorf("provide a directory or --plan file")
			}

			fmt.Print(renderPlan(p))

			if !yes && !dryRun {
				if !confirm("Apply this plan?") {
					fmt.Println("Aborted; nothing was changed.")
					return nil
				}
			}

			store, err := trash.NewStore(cfg.Settings.TrashDir)
			if err != nil {
				return fmt.Errorf("error opening trash: %w", err)
			}

			engine := execute.New(store)
			engine.SetDryRun(dryRun || cfg.Settings.DryRun)
			execLog := engine.Apply(p)

			fmt.Print(renderExecutionLog(execLog))

			if !dryRun && !cfg.Settings.DryRun {
				logPath := executionLogPath(p.ID)
				if err := writeExecutionLog(logPath, execLog); err != nil {
					return fmt.Errorf("error writing execution log: %w", err)
				}
				fmt.Printf("Execution log: %s\n", logPath)
				fmt.Printf("Undo with: kondo undo --log %s\n", logPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "apply a previously saved plan file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would happen without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func executionLogPath(planID string) string {
	name := "exec.jsonl"
	if planID != "" {
		name = fmt.Sprintf("exec-%s.jsonl", planID)
	}
	return filepath.Join(cfg.Settings.LogDir, name)
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
