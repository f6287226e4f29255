package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "quests"
scripts = "src/scripts"
entry = "main"

[run]
max-frame-depth = 500
max-instructions = 1000000
workers = 8

[cache]
enabled = true
path = "build/cache.db"

[log]
verbosity = 2
file = "rsc.log"

[server]
addr = ":9000"

[env.ci]
max-instructions = 50000
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "quests" {
		t.Errorf("project name = %q, want quests", m.Project.Name)
	}
	if m.Project.Entry != "main" {
		t.Errorf("entry = %q, want main", m.Project.Entry)
	}
	if m.Run.MaxFrameDepth != 500 || m.Run.MaxInstructions != 1000000 || m.Run.Workers != 8 {
		t.Errorf("run = %+v", m.Run)
	}
	if !m.Cache.Enabled {
		t.Error("cache enabled = false, want true")
	}
	if m.Log.Verbosity != 2 || m.Log.File != "rsc.log" {
		t.Errorf("log = %+v", m.Log)
	}
	if m.Server.Addr != ":9000" {
		t.Errorf("server addr = %q", m.Server.Addr)
	}
	if m.Env["ci"].MaxInstructions != 50000 {
		t.Errorf("env.ci = %+v", m.Env["ci"])
	}
	if got, want := m.ScriptsPath(), filepath.Join(m.Dir, "src", "scripts"); got != want {
		t.Errorf("ScriptsPath = %q, want %q", got, want)
	}
	if got, want := m.CachePath(), filepath.Join(m.Dir, "build", "cache.db"); got != want {
		t.Errorf("CachePath = %q, want %q", got, want)
	}
	if n := len(m.VMOptions()); n != 2 {
		t.Errorf("VMOptions returned %d options, want 2", n)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Scripts != "scripts" {
		t.Errorf("default scripts dir = %q, want scripts", m.Project.Scripts)
	}
	if m.Run.Workers != 4 {
		t.Errorf("default workers = %d, want 4", m.Run.Workers)
	}
	if m.Server.Addr != "localhost:8765" {
		t.Errorf("default addr = %q", m.Server.Addr)
	}
	if m.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if n := len(m.VMOptions()); n != 0 {
		t.Errorf("VMOptions returned %d options, want none", n)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[project\nname = 1", "parse error"},
		{"unknown key", "[run]\nmax-depth = 3", "unknown key"},
		{"negative depth", "[run]\nmax-frame-depth = -1", "max-frame-depth"},
		{"negative env workers", "[env.dev]\nworkers = -2", "env.dev"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tc.content)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path, err := Init(dir, "demo")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", path)
	}
	if info, err := os.Stat(filepath.Join(dir, "scripts")); err != nil || !info.IsDir() {
		t.Errorf("scripts directory not created: %v", err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	if m.Project.Name != "demo" || m.Project.Scripts != "scripts" || m.Server.Addr != "localhost:8765" {
		t.Errorf("loaded manifest = %+v", m)
	}

	if _, err := Init(dir, "again"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second Init error = %v, want already exists", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "envs"
entry = "main"

[run]
max-instructions = -1

[env.ci]
max-frame-depth = 64
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := t.TempDir()
	writeManifest(t, out, buf.String())
	again, err := Load(out)
	if err != nil {
		t.Fatalf("Load of encoded manifest: %v\n%s", err, buf.String())
	}
	if again.Project.Entry != "main" || again.Run.MaxInstructions != -1 || again.Env["ci"].MaxFrameDepth != 64 {
		t.Errorf("round trip lost settings:\n%s", buf.String())
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no rsc.toml exists")
	}
}

func TestApplyEnv(t *testing.T) {
	m := Default("/app")
	m.Run.MaxFrameDepth = 100
	m.Env = map[string]RunConfig{"ci": {MaxInstructions: 5000}}

	env := map[string]string{
		"RSC_SCRIPTS_DIR": "/elsewhere",
		"RSC_ENV":         "ci",
		"RSC_CACHE":       "true",
	}
	if err := m.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if m.ScriptsPath() != "/elsewhere" {
		t.Errorf("ScriptsPath = %q, want /elsewhere", m.ScriptsPath())
	}
	if m.Run.MaxInstructions != 5000 || m.Run.MaxFrameDepth != 100 {
		t.Errorf("run = %+v, want env override merged", m.Run)
	}
	if !m.Cache.Enabled {
		t.Error("RSC_CACHE=true did not enable the cache")
	}
}

func TestApplyEnvErrors(t *testing.T) {
	for _, env := range []map[string]string{
		{"RSC_ENV": "missing"},
		{"RSC_CACHE": "perhaps"},
	} {
		m := Default("/app")
		if err := m.ApplyEnv(func(k string) string { return env[k] }); err == nil {
			t.Errorf("ApplyEnv(%v) succeeded, want error", env)
		}
	}
}

func TestLockFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, ".rsc", "lock.toml")

	lf := &LockFile{
		Unit: "aa11",
		Procs: []LockedProc{
			{Name: "fib", Hash: "abc123"},
			{Name: "add", Hash: "def456"},
		},
	}

	if err := WriteLock(lockPath, lf); err != nil {
		t.Fatalf("WriteLock failed: %v", err)
	}

	loaded, err := ReadLock(lockPath)
	if err != nil {
		t.Fatalf("ReadLock failed: %v", err)
	}

	if loaded.Unit != "aa11" {
		t.Errorf("unit = %q, want aa11", loaded.Unit)
	}
	if len(loaded.Procs) != 2 {
		t.Fatalf("expected 2 procs, got %d", len(loaded.Procs))
	}
	if loaded.Procs[0].Name != "add" {
		t.Errorf("procs not sorted: %v", loaded.Procs)
	}

	found := loaded.FindLockedProc("fib")
	if found == nil || found.Hash != "abc123" {
		t.Errorf("FindLockedProc(fib) = %v, want hash abc123", found)
	}
	if notFound := loaded.FindLockedProc("nonexistent"); notFound != nil {
		t.Errorf("FindLockedProc(nonexistent) = %v, want nil", notFound)
	}
}

func TestReadLockNotFound(t *testing.T) {
	lf, err := ReadLock(filepath.Join(t.TempDir(), "lock.toml"))
	if err != nil {
		t.Errorf("ReadLock should return nil,nil for missing file, got err: %v", err)
	}
	if lf != nil {
		t.Errorf("ReadLock should return nil for missing file, got %v", lf)
	}
}

func TestLockDiff(t *testing.T) {
	old := &LockFile{Procs: []LockedProc{
		{Name: "a", Hash: "1"},
		{Name: "b", Hash: "2"},
		{Name: "c", Hash: "3"},
	}}
	cur := &LockFile{Procs: []LockedProc{
		{Name: "a", Hash: "1"},
		{Name: "b", Hash: "9"},
		{Name: "d", Hash: "4"},
	}}

	got := cur.Diff(old)
	want := []LockChange{{"b", "changed"}, {"c", "removed"}, {"d", "added"}}
	if len(got) != len(want) {
		t.Fatalf("Diff = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, got[i], want[i])
		}
	}

	if all := cur.Diff(nil); len(all) != 3 || all[0].Kind != "added" {
		t.Errorf("Diff(nil) = %v, want every proc added", all)
	}
}
