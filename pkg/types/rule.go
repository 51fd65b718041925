package types

import (
	"fmt"
	"strings"
	"time"
)

// ConditionKind selects which check a Condition performs.
type ConditionKind string

const (
	ExtensionEquals ConditionKind = "extension_equals"
	NameContains    ConditionKind = "name_contains"
	NameMatchesGlob ConditionKind = "name_matches_glob"
	SizeGreaterThan ConditionKind = "size_greater_than"
	CreatedBefore   ConditionKind = "created_before"
	ModifiedBefore  ConditionKind = "modified_before"
	IsDirectory     ConditionKind = "is_directory"
)

// Condition is one check against a file snapshot. Conditions that depend on
// optional snapshot metadata fail closed: missing metadata never matches.
type Condition struct {
	Kind      ConditionKind `json:"kind" yaml:"kind"`
	Value     string        `json:"value,omitempty" yaml:"value,omitempty"`         // extension, substring or glob pattern
	Threshold int64         `json:"threshold,omitempty" yaml:"threshold,omitempty"` // bytes, for size_greater_than
	Cutoff    *time.Time    `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`       // for created_before / modified_before
}

// OutcomeKind selects what a matched rule wants done with the file.
type OutcomeKind string

const (
	OutcomeMove   OutcomeKind = "move"
	OutcomeCopy   OutcomeKind = "copy"
	OutcomeDelete OutcomeKind = "delete" // always trash-recoverable, never a permanent unlink
	OutcomeRename OutcomeKind = "rename"
	OutcomeSkip   OutcomeKind = "skip"
)

// Outcome is what a rule wants done with a matched file. All fields are
// comparable so outcome compatibility is plain value equality.
type Outcome struct {
	Kind        OutcomeKind `json:"kind" yaml:"kind"`
	Destination string      `json:"destination,omitempty" yaml:"destination,omitempty"` // move / copy target folder
	Prefix      string      `json:"prefix,omitempty" yaml:"prefix,omitempty"`           // rename
	Suffix      string      `json:"suffix,omitempty" yaml:"suffix,omitempty"`           // rename
	Reason      string      `json:"reason,omitempty" yaml:"reason,omitempty"`           // skip
}

// Compatible reports whether two outcomes describe the same effect: the same
// variant with structurally equal payloads.
func (o Outcome) Compatible(other Outcome) bool {
	return o == other
}

// Describe returns a short human-readable description of the outcome, used
// in conflict explanations.
func (o Outcome) Describe() string {
	switch o.Kind {
	case OutcomeMove:
		return "Move to " + o.Destination
	case OutcomeCopy:
		return "Copy to " + o.Destination
	case OutcomeDelete:
		return "Delete"
	case OutcomeRename:
		var parts []string
		if o.Prefix != "" {
			parts = append(parts, fmt.Sprintf("prefix %q", o.Prefix))
		}
		if o.Suffix != "" {
			parts = append(parts, fmt.Sprintf("suffix %q", o.Suffix))
		}
		if len(parts) == 0 {
			return "Rename"
		}
		return "Rename with " + strings.Join(parts, " and ")
	case OutcomeSkip:
		if o.Reason != "" {
			return "Skip: " + o.Reason
		}
		return "Skip"
	default:
		return string(o.Kind)
	}
}

// Rule is pure configuration: an ordered conjunction of conditions and a
// single outcome. Rules are never executed directly; the planner turns them
// into concrete actions.
type Rule struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool        `json:"enabled" yaml:"enabled"`
	Conditions  []Condition `json:"conditions" yaml:"conditions"`
	Outcome     Outcome     `json:"outcome" yaml:"outcome"`
	Group       string      `json:"group,omitempty" yaml:"group,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
}
