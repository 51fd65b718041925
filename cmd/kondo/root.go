package main

import (
	"fmt"

	"kondo/internal/config"
	"kondo/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:     "kondo",
		Short:   "Organize files under declarative rules, with a full audit trail",
		Version: version,
		Long: `Kondo organizes files under declarative rules while keeping every change
explainable and reversible. Plans are built from rules, shown for approval,
applied with per-action logging, and can be undone from the log — deletes
always go to a recoverable trash, never straight to oblivion.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(debug)

			var err error
			if cfgFile != "" {
				cfg, err = config.LoadFile(cfgFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				fmt.Printf("Warning: %v\n", err)
				fmt.Println("Using default settings.")
				cfg = config.New()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/kondo/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewApplyCmd())
	rootCmd.AddCommand(NewUndoCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewRulesCmd())

	return rootCmd
}
