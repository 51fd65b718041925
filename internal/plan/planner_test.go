package plan_test

import (
	"encoding/json"
	"testing"
	"time"

	"kondo/internal/plan"
	"kondo/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(path string, size int64) types.FileSnapshot {
	f := types.NewFileSnapshot(path)
	f.Size = &size
	f.IsReadable = true
	return f
}

func moveRule(name, dest string) types.Rule {
	return types.Rule{
		Name:    name,
		Enabled: true,
		Conditions: []types.Condition{
			{Kind: types.ExtensionEquals, Value: "pdf"},
		},
		Outcome: types.Outcome{Kind: types.OutcomeMove, Destination: dest},
	}
}

func TestNoRulesMatched(t *testing.T) {
	p := plan.Build([]types.FileSnapshot{snapshot("/in/photo.jpg", 100)}, []types.Rule{moveRule("Archive PDFs", "/Archive")})

	require.Len(t, p.Actions, 1, "every file yields exactly one action")
	assert.Equal(t, types.ActionSkip, p.Actions[0].Kind)
	assert.Equal(t, "No rules matched this file.", p.Actions[0].Reason)
}

func TestSingleMatch(t *testing.T) {
	p := plan.Build([]types.FileSnapshot{snapshot("/in/invoice.pdf", 500)}, []types.Rule{moveRule("Archive PDFs", "/Archive")})

	require.Len(t, p.Actions, 1)
	a := p.Actions[0]
	assert.Equal(t, types.ActionMove, a.Kind)
	assert.Equal(t, "/Archive/invoice.pdf", a.Destination)
	assert.Contains(t, a.Reason, "Archive PDFs", "reason should name the matching rule")
}

func TestCompatibleMultiMatch(t *testing.T) {
	rules := []types.Rule{moveRule("Old invoices", "/Archive"), moveRule("All PDFs", "/Archive")}
	p := plan.Build([]types.FileSnapshot{snapshot("/in/invoice.pdf", 500)}, rules)

	require.Len(t, p.Actions, 1)
	a := p.Actions[0]
	assert.Equal(t, types.ActionMove, a.Kind, "compatible outcomes merge into one action")
	assert.Equal(t, "/Archive/invoice.pdf", a.Destination)
	assert.Contains(t, a.Reason, "Old invoices")
	assert.Contains(t, a.Reason, "All PDFs")
}

func TestConflictingMatches(t *testing.T) {
	deleteRule := types.Rule{
		Name:       "B",
		Enabled:    true,
		Conditions: []types.Condition{{Kind: types.ExtensionEquals, Value: "pdf"}},
		Outcome:    types.Outcome{Kind: types.OutcomeDelete},
	}
	rules := []types.Rule{moveRule("A", "/Archive"), deleteRule}
	p := plan.Build([]types.FileSnapshot{snapshot("/in/invoice.pdf", 500)}, rules)

	require.Len(t, p.Actions, 1)
	a := p.Actions[0]
	assert.Equal(t, types.ActionSkip, a.Kind, "incompatible outcomes resolve to skip")
	assert.Contains(t, a.Reason, "A -> Move to /Archive; B -> Delete",
		"conflict reason enumerates rule -> outcome in input rule order")
}

func TestFailClosedOnMissingMetadata(t *testing.T) {
	noSize := types.NewFileSnapshot("/in/unknown.bin")
	rule := types.Rule{
		Name:       "Big files",
		Enabled:    true,
		Conditions: []types.Condition{{Kind: types.SizeGreaterThan, Threshold: 0}},
		Outcome:    types.Outcome{Kind: types.OutcomeMove, Destination: "/Big"},
	}

	p := plan.Build([]types.FileSnapshot{noSize}, []types.Rule{rule})
	assert.Equal(t, types.ActionSkip, p.Actions[0].Kind,
		"missing size never matches size_greater_than, even at threshold 0")

	t.Run("missing timestamps fail closed too", func(t *testing.T) {
		cutoff := time.Now()
		rule.Conditions = []types.Condition{{Kind: types.ModifiedBefore, Cutoff: &cutoff}}
		p := plan.Build([]types.FileSnapshot{noSize}, []types.Rule{rule})
		assert.Equal(t, types.ActionSkip, p.Actions[0].Kind)
	})
}

func TestDisabledRulesIgnored(t *testing.T) {
	r := moveRule("Archive PDFs", "/Archive")
	r.Enabled = false
	p := plan.Build([]types.FileSnapshot{snapshot("/in/invoice.pdf", 500)}, []types.Rule{r})
	assert.Equal(t, types.ActionSkip, p.Actions[0].Kind)
}

func TestCaseInsensitiveMatching(t *testing.T) {
	p := plan.Build([]types.FileSnapshot{snapshot("/in/REPORT.PDF", 10)}, []types.Rule{moveRule("Archive PDFs", "/Archive")})
	assert.Equal(t, types.ActionMove, p.Actions[0].Kind)

	t.Run("name contains", func(t *testing.T) {
		rule := types.Rule{
			Name:       "Screenshots",
			Enabled:    true,
			Conditions: []types.Condition{{Kind: types.NameContains, Value: "screen shot"}},
			Outcome:    types.Outcome{Kind: types.OutcomeMove, Destination: "/Shots"},
		}
		p := plan.Build([]types.FileSnapshot{snapshot("/in/Screen Shot 01.png", 10)}, []types.Rule{rule})
		assert.Equal(t, types.ActionMove, p.Actions[0].Kind)
	})

	t.Run("glob", func(t *testing.T) {
		rule := types.Rule{
			Name:       "ISO images",
			Enabled:    true,
			Conditions: []types.Condition{{Kind: types.NameMatchesGlob, Value: "*.ISO"}},
			Outcome:    types.Outcome{Kind: types.OutcomeMove, Destination: "/Images"},
		}
		p := plan.Build([]types.FileSnapshot{snapshot("/in/ubuntu.iso", 10)}, []types.Rule{rule})
		assert.Equal(t, types.ActionMove, p.Actions[0].Kind)
	})
}

func TestRenameComputedAtPlanTime(t *testing.T) {
	rule := types.Rule{
		Name:       "Tag invoices",
		Enabled:    true,
		Conditions: []types.Condition{{Kind: types.NameContains, Value: "invoice"}},
		Outcome:    types.Outcome{Kind: types.OutcomeRename, Prefix: "2024-", Suffix: ".bak"},
	}
	p := plan.Build([]types.FileSnapshot{snapshot("/in/invoice.pdf", 10)}, []types.Rule{rule})

	a := p.Actions[0]
	assert.Equal(t, types.ActionRename, a.Kind)
	assert.Equal(t, "2024-invoice.pdf.bak", a.NewName, "rename is pure string concatenation")
}

func TestExplicitSkipOutcome(t *testing.T) {
	rule := types.Rule{
		Name:       "Leave symlink targets",
		Enabled:    true,
		Conditions: []types.Condition{{Kind: types.NameContains, Value: "keep"}},
		Outcome:    types.Outcome{Kind: types.OutcomeSkip, Reason: "pinned by user"},
	}
	p := plan.Build([]types.FileSnapshot{snapshot("/in/keep.txt", 10)}, []types.Rule{rule})

	a := p.Actions[0]
	assert.Equal(t, types.ActionSkip, a.Kind)
	assert.Contains(t, a.Reason, "pinned by user")
	assert.Contains(t, a.Reason, "Leave symlink targets", "skip reason keeps the match context")
}

func TestDeterminism(t *testing.T) {
	files := []types.FileSnapshot{
		snapshot("/in/invoice.pdf", 500),
		snapshot("/in/photo.jpg", 2048),
		types.NewFileSnapshot("/in/mystery"),
	}
	rules := []types.Rule{moveRule("Archive PDFs", "/Archive"), moveRule("Dup", "/Elsewhere")}

	first := plan.Build(files, rules)
	second := plan.Build(files, rules)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "identical inputs must produce byte-identical plans")
}
