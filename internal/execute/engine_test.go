package execute_test

import (
	"os"
	"path/filepath"
	"testing"

	"kondo/internal/execute"
	"kondo/internal/trash"
	"kondo/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, tmpDir string) (*execute.Engine, *trash.Store) {
	t.Helper()
	store, err := trash.NewStore(filepath.Join(tmpDir, ".trash"))
	require.NoError(t, err)
	return execute.New(store), store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func moveAction(src, dest string) types.PlannedAction {
	return types.PlannedAction{
		File:        types.NewFileSnapshot(src),
		Kind:        types.ActionMove,
		Destination: dest,
		Reason:      `Matched rule "Archive".`,
	}
}

func TestMoveCreatesParentsAndLogs(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	src := filepath.Join(tmpDir, "invoice.pdf")
	writeFile(t, src, "pdf")
	dest := filepath.Join(tmpDir, "Archive", "2024", "invoice.pdf")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{moveAction(src, dest)}})

	require.Len(t, execLog.Records, 1)
	rec := execLog.Records[0]
	assert.Equal(t, types.ExecutionSucceeded, rec.Outcome)
	assert.Equal(t, dest, rec.ResultPath)
	assert.Contains(t, rec.Reason, "Archive", "success keeps the planned reason")

	_, err := os.Stat(dest)
	assert.NoError(t, err, "destination should exist, parents created as needed")
	_, err = os.Stat(src)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNeverOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	src := filepath.Join(tmpDir, "x.txt")
	dest := filepath.Join(tmpDir, "dest", "x.txt")
	writeFile(t, src, "new")
	writeFile(t, dest, "existing")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{moveAction(src, dest)}})

	rec := execLog.Records[0]
	assert.Equal(t, types.ExecutionFailed, rec.Outcome)
	assert.Contains(t, rec.Reason, "destination already exists")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data), "occupant must be untouched")
	_, err = os.Stat(src)
	assert.NoError(t, err, "source must be untouched after a refused move")
}

func TestStaleSnapshotSkips(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	gone := filepath.Join(tmpDir, "vanished.txt")
	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{moveAction(gone, filepath.Join(tmpDir, "d", "vanished.txt"))}})

	rec := execLog.Records[0]
	assert.Equal(t, types.ExecutionSkipped, rec.Outcome, "missing source is a skip, not a crash")
	assert.Contains(t, rec.Reason, "no longer exists")
}

func TestSourceStatErrorClassified(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	// A path that routes through a regular file fails Lstat with ENOTDIR,
	// which is neither a missing source nor a permission problem.
	blocker := filepath.Join(tmpDir, "file.txt")
	writeFile(t, blocker, "x")
	src := filepath.Join(blocker, "child.txt")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{moveAction(src, filepath.Join(tmpDir, "out", "child.txt"))}})

	rec := execLog.Records[0]
	assert.Equal(t, types.ExecutionFailed, rec.Outcome)
	assert.NotContains(t, rec.Reason, "permission denied",
		"a non-permission stat error must not be recorded as permission denied")
	assert.Contains(t, rec.Reason, "unknown reason")
}

func TestFailureDoesNotAbortBatch(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	blockedSrc := filepath.Join(tmpDir, "a.txt")
	blockedDest := filepath.Join(tmpDir, "out", "a.txt")
	writeFile(t, blockedSrc, "a")
	writeFile(t, blockedDest, "occupied")

	okSrc := filepath.Join(tmpDir, "b.txt")
	writeFile(t, okSrc, "b")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{
		moveAction(blockedSrc, blockedDest),
		moveAction(okSrc, filepath.Join(tmpDir, "out", "b.txt")),
	}})

	require.Len(t, execLog.Records, 2)
	assert.Equal(t, types.ExecutionFailed, execLog.Records[0].Outcome)
	assert.Equal(t, types.ExecutionSucceeded, execLog.Records[1].Outcome,
		"later actions still run after an earlier failure")
}

func TestCopyLeavesSource(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	src := filepath.Join(tmpDir, "photo.jpg")
	writeFile(t, src, "jpeg bytes")
	dest := filepath.Join(tmpDir, "Pictures", "photo.jpg")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{{
		File:        types.NewFileSnapshot(src),
		Kind:        types.ActionCopy,
		Destination: dest,
		Reason:      `Matched rule "Backup photos".`,
	}}})

	rec := execLog.Records[0]
	require.Equal(t, types.ExecutionSucceeded, rec.Outcome)
	for _, p := range []string{src, dest} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(data))
	}
}

func TestDeleteGoesToTrash(t *testing.T) {
	tmpDir := t.TempDir()
	engine, store := newEngine(t, tmpDir)

	victim := filepath.Join(tmpDir, "junk.tmp")
	writeFile(t, victim, "junk")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{{
		File:   types.NewFileSnapshot(victim),
		Kind:   types.ActionDelete,
		Reason: `Matched rule "Clean temp files".`,
	}}})

	rec := execLog.Records[0]
	require.Equal(t, types.ExecutionSucceeded, rec.Outcome)
	require.NotEmpty(t, rec.TrashEntry, "delete must record its trash entry for undo")

	_, err := os.Stat(victim)
	assert.ErrorIs(t, err, os.ErrNotExist)

	entry, ok := store.Entry(rec.TrashEntry)
	require.True(t, ok)
	data, err := os.ReadFile(entry.To)
	require.NoError(t, err)
	assert.Equal(t, "junk", string(data), "delete is recoverable, never a permanent unlink")
}

func TestRenameUsesPlannedName(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)

	src := filepath.Join(tmpDir, "draft.md")
	writeFile(t, src, "text")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{{
		File:    types.NewFileSnapshot(src),
		Kind:    types.ActionRename,
		NewName: "final-draft.md",
		Reason:  `Matched rule "Finalize".`,
	}}})

	rec := execLog.Records[0]
	require.Equal(t, types.ExecutionSucceeded, rec.Outcome)
	assert.Equal(t, filepath.Join(tmpDir, "final-draft.md"), rec.ResultPath)
	_, err := os.Stat(rec.ResultPath)
	assert.NoError(t, err)
}

func TestSkipActionsPassThrough(t *testing.T) {
	engine, _ := newEngine(t, t.TempDir())

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{{
		File:   types.NewFileSnapshot("/anywhere/at-all.txt"),
		Kind:   types.ActionSkip,
		Reason: "No rules matched this file.",
	}}})

	rec := execLog.Records[0]
	assert.Equal(t, types.ExecutionSkipped, rec.Outcome)
	assert.Equal(t, "No rules matched this file.", rec.Reason)
}

func TestDryRunTouchesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	engine, _ := newEngine(t, tmpDir)
	engine.SetDryRun(true)

	src := filepath.Join(tmpDir, "file.txt")
	writeFile(t, src, "content")

	execLog := engine.Apply(types.ActionPlan{Actions: []types.PlannedAction{moveAction(src, filepath.Join(tmpDir, "dest", "file.txt"))}})

	assert.Equal(t, types.ExecutionSkipped, execLog.Records[0].Outcome)
	_, err := os.Stat(src)
	assert.NoError(t, err, "dry run must not move anything")
}
