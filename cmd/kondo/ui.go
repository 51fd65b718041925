package main

import (
	"fmt"
	"strings"

	"kondo/pkg/types"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AF5F"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7AF00"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D70000"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#959595"))
)

func renderPlan(p types.ActionPlan) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Plan %s — %d actions", shortID(p.ID), len(p.Actions))))
	sb.WriteString("\n")

	for _, a := range p.Actions {
		switch a.Kind {
		case types.ActionSkip:
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("  skip    %s", a.File.Path)))
		case types.ActionDelete:
			sb.WriteString(warnStyle.Render(fmt.Sprintf("  delete  %s (to trash)", a.File.Path)))
		case types.ActionRename:
			sb.WriteString(fmt.Sprintf("  rename  %s -> %s", a.File.Path, a.NewName))
		default:
			sb.WriteString(fmt.Sprintf("  %-7s %s -> %s", a.Kind, a.File.Path, a.Destination))
		}
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render("          because " + a.Reason))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderExecutionLog(l types.ExecutionLog) string {
	var sb strings.Builder
	counts := map[types.ExecutionOutcome]int{}
	for _, rec := range l.Records {
		counts[rec.Outcome]++
		switch rec.Outcome {
		case types.ExecutionSucceeded:
			sb.WriteString(successStyle.Render(fmt.Sprintf("  ok      %s", rec.Action.File.Path)))
		case types.ExecutionSkipped:
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("  skip    %s", rec.Action.File.Path)))
		case types.ExecutionFailed:
			sb.WriteString(errorStyle.Render(fmt.Sprintf("  fail    %s", rec.Action.File.Path)))
		}
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render("          because " + rec.Reason))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("%d succeeded, %d skipped, %d failed\n",
		counts[types.ExecutionSucceeded], counts[types.ExecutionSkipped], counts[types.ExecutionFailed]))
	return sb.String()
}

func renderUndoLog(l types.UndoLog) string {
	var sb strings.Builder
	counts := map[types.UndoOutcome]int{}
	for _, rec := range l.Records {
		counts[rec.Outcome]++
		switch rec.Outcome {
		case types.UndoRestored:
			sb.WriteString(successStyle.Render(fmt.Sprintf("  undone  %s", rec.Path)))
		case types.UndoSkipped:
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("  skip    %s", rec.Path)))
		case types.UndoFailed:
			sb.WriteString(errorStyle.Render(fmt.Sprintf("  fail    %s", rec.Path)))
		}
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render("          because " + rec.Reason))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("%d restored, %d skipped, %d failed\n",
		counts[types.UndoRestored], counts[types.UndoSkipped], counts[types.UndoFailed]))
	return sb.String()
}

func renderSuggestion(s types.ScanSuggestion) string {
	style := mutedStyle
	switch s.Urgency {
	case types.UrgencyMedium:
		style = warnStyle
	case types.UrgencyHigh:
		style = errorStyle
	}
	return style.Render(fmt.Sprintf("rescan suggested (%s) for %s: %s", s.Urgency, s.Root, s.Reason))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "(unsaved)"
	}
	return id
}
