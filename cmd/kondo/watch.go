package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kondo/internal/errors"
	"kondo/internal/log"
	"kondo/internal/staleness"
	"kondo/internal/watch"
	"kondo/pkg/types"

	"github.com/spf13/cobra"
)

// bridgeSubscriber feeds observer output into the staleness bridge and
// prints advisories. It never triggers a rescan itself; suggestions are
// advisory output for the user.
type bridgeSubscriber struct {
	bridge *staleness.Bridge
}

func (s *bridgeSubscriber) HandleEvent(ev types.NormalizedEvent) {
	s.bridge.HandleEvent(ev)
}

func (s *bridgeSubscriber) HandleAdvisory(err error) {
	switch errors.KindOf(err) {
	case errors.EventsPossiblyDropped:
		fmt.Println(warnStyle.Render("events may have been dropped; consider rescanning watched roots"))
	case errors.RootPermissionLost:
		fmt.Println(errorStyle.Render(err.Error()))
	default:
		log.Warn("observer advisory: %v", err)
	}
}

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Watch directories and report when scan results go stale",
		Long: `Watch observes filesystem change notifications for the given directories
(or the configured watch list) and tracks how stale prior scan results are.
When a root goes stale it prints an advisory rescan suggestion. Nothing is
organized automatically; events are hints, never triggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = cfg.Settings.Watch
			}
			if len(roots) == 0 {
				return fmt.Errorf("no directories to watch; pass them as arguments or set settings.watch")
			}

			bridge := staleness.NewBridge(func(s types.ScanSuggestion) {
				fmt.Println(renderSuggestion(s))
			})
			for _, root := range roots {
				bridge.RegisterRoot(root)
				// Watching starts with current knowledge; treat it as freshly scanned.
				bridge.MarkScanCompleted(root, time.Now())
			}

			observer := watch.NewObserver(watch.NewFSNotifySource(), &bridgeSubscriber{bridge: bridge})
			if err := observer.Start(roots); err != nil {
				return fmt.Errorf("error starting observation: %w", err)
			}
			defer observer.Stop()

			fmt.Printf("Watching %d directories. Press Ctrl+C to stop.\n", len(roots))

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			fmt.Println("Stopping.")
			return nil
		},
	}
	return cmd
}
