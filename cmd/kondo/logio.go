package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kondo/pkg/types"
)

// Log files are JSON lines: one self-contained record per line, appended in
// order and readable without any replay logic. Plans are single JSON
// documents since they are written once and consumed whole.

func savePlan(path string, p types.ActionPlan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadPlan(path string) (types.ActionPlan, error) {
	var p types.ActionPlan
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("error parsing plan file %s: %w", path, err)
	}
	return p, nil
}

func writeExecutionLog(path string, l types.ExecutionLog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, rec := range l.Records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func readExecutionLog(path string) (types.ExecutionLog, error) {
	var l types.ExecutionLog
	f, err := os.Open(path)
	if err != nil {
		return l, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec types.ExecutionRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return l, fmt.Errorf("error parsing log line in %s: %w", path, err)
		}
		l.Records = append(l.Records, rec)
	}
	return l, scanner.Err()
}

func writeUndoLog(path string, l types.UndoLog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, rec := range l.Records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
