// Package plan turns file snapshots and declarative rules into an action
// plan. Planning is a pure function: no I/O, no clocks, no randomness, so
// the same snapshots and rules always produce a byte-identical plan.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"kondo/pkg/types"

	"github.com/gobwas/glob"
)

// NoMatchReason is the reason recorded when no enabled rule matches a file.
const NoMatchReason = "No rules matched this file."

// Build evaluates every enabled rule against every snapshot and produces
// exactly one planned action per file. Safe for unrestricted concurrent use.
func Build(files []types.FileSnapshot, rules []types.Rule) types.ActionPlan {
	actions := make([]types.PlannedAction, 0, len(files))
	for _, f := range files {
		actions = append(actions, actionFor(f, rules))
	}
	return types.ActionPlan{Actions: actions}
}

func actionFor(f types.FileSnapshot, rules []types.Rule) types.PlannedAction {
	var matched []types.Rule
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		if ruleMatches(f, r) {
			matched = append(matched, r)
		}
	}

	switch len(matched) {
	case 0:
		return skipAction(f, NoMatchReason)
	case 1:
		return convert(f, matched[0].Outcome, fmt.Sprintf("Matched rule %q.", matched[0].Name))
	}

	// Multiple matches merge only when every pair of outcomes describes the
	// same effect; otherwise the conflict is resolved to an inspectable skip.
	shared := matched[0].Outcome
	for _, r := range matched[1:] {
		if !shared.Compatible(r.Outcome) {
			return skipAction(f, conflictReason(matched))
		}
	}

	names := make([]string, len(matched))
	for i, r := range matched {
		names[i] = fmt.Sprintf("%q", r.Name)
	}
	return convert(f, shared, fmt.Sprintf("Matched rules %s.", strings.Join(names, ", ")))
}

// conflictReason enumerates every matching rule and its outcome in input
// rule order, so the conflict is fully inspectable without re-planning.
func conflictReason(matched []types.Rule) string {
	parts := make([]string, len(matched))
	for i, r := range matched {
		parts[i] = fmt.Sprintf("%s -> %s", r.Name, r.Outcome.Describe())
	}
	return "Conflicting rules: " + strings.Join(parts, "; ")
}

// ruleMatches reports whether all of the rule's conditions hold for the
// snapshot. The conjunction over zero conditions holds.
func ruleMatches(f types.FileSnapshot, r types.Rule) bool {
	for _, c := range r.Conditions {
		if !conditionHolds(f, c) {
			return false
		}
	}
	return true
}

// conditionHolds evaluates one condition. String comparisons are
// case-insensitive. Conditions over optional snapshot metadata fail closed:
// absent metadata never matches, regardless of the threshold or cutoff.
func conditionHolds(f types.FileSnapshot, c types.Condition) bool {
	switch c.Kind {
	case types.ExtensionEquals:
		want := strings.TrimPrefix(c.Value, ".")
		return want != "" && strings.EqualFold(f.Extension, want)
	case types.NameContains:
		return c.Value != "" && strings.Contains(strings.ToLower(f.Name), strings.ToLower(c.Value))
	case types.NameMatchesGlob:
		g, err := glob.Compile(strings.ToLower(c.Value))
		if err != nil {
			// An invalid pattern never matches.
			return false
		}
		return g.Match(strings.ToLower(f.Name))
	case types.SizeGreaterThan:
		if f.Size == nil {
			return false
		}
		return *f.Size > c.Threshold
	case types.CreatedBefore:
		if f.CreatedAt == nil || c.Cutoff == nil {
			return false
		}
		return f.CreatedAt.Before(*c.Cutoff)
	case types.ModifiedBefore:
		if f.ModifiedAt == nil || c.Cutoff == nil {
			return false
		}
		return f.ModifiedAt.Before(*c.Cutoff)
	case types.IsDirectory:
		return f.IsDirectory
	default:
		return false
	}
}

// convert maps a rule outcome onto a concrete action for the file.
// Destination resolution and rename name computation are pure string math;
// collisions and trash mechanics are the execution engine's concern.
func convert(f types.FileSnapshot, o types.Outcome, reason string) types.PlannedAction {
	switch o.Kind {
	case types.OutcomeMove:
		return types.PlannedAction{
			File:        f,
			Kind:        types.ActionMove,
			Destination: filepath.Join(o.Destination, f.Name),
			Reason:      reason,
		}
	case types.OutcomeCopy:
		return types.PlannedAction{
			File:        f,
			Kind:        types.ActionCopy,
			Destination: filepath.Join(o.Destination, f.Name),
			Reason:      reason,
		}
	case types.OutcomeDelete:
		return types.PlannedAction{File: f, Kind: types.ActionDelete, Reason: reason}
	case types.OutcomeRename:
		return types.PlannedAction{
			File:    f,
			Kind:    types.ActionRename,
			NewName: o.Prefix + f.Name + o.Suffix,
			Reason:  reason,
		}
	case types.OutcomeSkip:
		if o.Reason != "" {
			reason = fmt.Sprintf("%s (%s)", o.Reason, reason)
		}
		return skipAction(f, reason)
	default:
		return skipAction(f, fmt.Sprintf("Unrecognized outcome %q (%s)", o.Kind, reason))
	}
}

func skipAction(f types.FileSnapshot, reason string) types.PlannedAction {
	return types.PlannedAction{File: f, Kind: types.ActionSkip, Reason: reason}
}
