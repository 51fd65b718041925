package main

import (
	"fmt"
	"strings"

	"kondo/internal/trash"
	"kondo/internal/undo"

	"github.com/spf13/cobra"
)

// NewUndoCmd creates the undo command
func NewUndoCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "undo --log <execution log>",
		Short: "Reverse the actions recorded in an execution log",
		Long: `Undo reads an execution log and reverses each succeeded action: moves and
renames go back, copies are removed, trashed files are restored. Live
filesystem state is re-checked before every step, so running undo twice is
safe — the second pass only records skips.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logFile == "" {
				return fmt.Errorf("--log is required")
			}

			execLog, err := readExecutionLog(logFile)
			if err != nil {
				return fmt.Errorf("error reading execution log: %w", err)
			}

			store, err := trash.NewStore(cfg.Settings.TrashDir)
			if err != nil {
				return fmt.Errorf("error opening trash: %w", err)
			}

			undoLog := undo.New(store).Revert(execLog)
			fmt.Print(renderUndoLog(undoLog))

			undoPath := strings.TrimSuffix(logFile, ".jsonl") + ".undo.jsonl"
			if err := writeUndoLog(undoPath, undoLog); err != nil {
				return fmt.Errorf("error writing undo log: %w", err)
			}
			fmt.Printf("Undo log: %s\n", undoPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "execution log to reverse")
	return cmd
}
