package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// LockFile records the content hashes of the last checked translation unit.
// `rsc check -lock` writes it so later checks can report which procedures
// changed meaning.
type LockFile struct {
	Unit  string       `toml:"unit"`
	Procs []LockedProc `toml:"proc"`
}

// LockedProc is the hash of one procedure.
type LockedProc struct {
	Name string `toml:"name"`
	Hash string `toml:"hash"`
}

// LockFilePath returns the path to .rsc/lock.toml.
func (m *Manifest) LockFilePath() string {
	return filepath.Join(m.Dir, ".rsc", "lock.toml")
}

// ReadLock reads a lock file. A missing file yields nil, nil.
func ReadLock(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lf LockFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &lf, nil
}

// WriteLock writes lf to path, creating parent directories. Procedures are
// written sorted by name.
func WriteLock(path string, lf *LockFile) error {
	sorted := *lf
	sorted.Procs = append([]LockedProc(nil), lf.Procs...)
	sort.Slice(sorted.Procs, func(i, j int) bool {
		return sorted.Procs[i].Name < sorted.Procs[j].Name
	})

	var buf bytes.Buffer
	buf.WriteString("# Generated by rsc check -lock. Do not edit.\n\n")
	if err := toml.NewEncoder(&buf).Encode(sorted); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// FindLockedProc returns the entry for name, or nil.
func (lf *LockFile) FindLockedProc(name string) *LockedProc {
	if lf == nil {
		return nil
	}
	for i := range lf.Procs {
		if lf.Procs[i].Name == name {
			return &lf.Procs[i]
		}
	}
	return nil
}

// LockChange describes how one procedure differs between two lock files.
type LockChange struct {
	Name string
	Kind string // "added", "removed" or "changed"
}

// Diff lists the procedures that differ from old to lf, sorted by name.
// A nil old reports every procedure as added.
func (lf *LockFile) Diff(old *LockFile) []LockChange {
	var changes []LockChange
	for _, p := range lf.Procs {
		prev := old.FindLockedProc(p.Name)
		switch {
		case prev == nil:
			changes = append(changes, LockChange{p.Name, "added"})
		case prev.Hash != p.Hash:
			changes = append(changes, LockChange{p.Name, "changed"})
		}
	}
	if old != nil {
		for _, p := range old.Procs {
			if lf.FindLockedProc(p.Name) == nil {
				changes = append(changes, LockChange{p.Name, "removed"})
			}
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes
}
