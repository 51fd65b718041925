// Package scan enumerates a directory into immutable file snapshots for the
// planner. Enumeration is best-effort and read-only: entries that cannot be
// inspected are reported and skipped, never fatal, and the snapshots are
// evidence of one instant, not live truth.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	"kondo/internal/log"
	"kondo/pkg/types"
)

// Directory enumerates the entries directly under dir. Snapshots come back
// sorted by path so planning over them is deterministic. The error slice
// collects per-entry problems; a non-empty slice does not invalidate the
// snapshots that were captured.
func Directory(dir string) ([]types.FileSnapshot, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{err}
	}

	var snapshots []types.FileSnapshot
	var errs []error
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		snap, err := File(path)
		if err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Debug("skipping unreadable entry")
			errs = append(errs, err)
			continue
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Path < snapshots[j].Path })
	return snapshots, errs
}

// File captures a snapshot of a single path.
func File(path string) (types.FileSnapshot, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return types.FileSnapshot{}, err
	}

	snap := types.NewFileSnapshot(path)
	snap.IsDirectory = info.IsDir()
	snap.IsSymlink = info.Mode()&os.ModeSymlink != 0
	snap.IsReadable = readable(path, info)

	if info.Mode().IsRegular() {
		size := info.Size()
		snap.Size = &size
	}
	if mod := info.ModTime(); !mod.IsZero() {
		snap.ModifiedAt = &mod
	}
	// Creation time is not portably available; the field stays unset and
	// created_before conditions fail closed for these snapshots.
	return snap, nil
}

func readable(path string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink != 0 {
		// Opening would follow the link; judge the link itself readable.
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
