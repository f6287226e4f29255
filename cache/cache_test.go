package cache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/vm"
)

const fibSource = `[proc,fib](int $n)(int)
if ($n < 2) {
	return($n);
}
return(calc(~fib(calc($n - 1)) + ~fib(calc($n - 2))));
`

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	prog, err := compiler.Compile(fibSource)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put("k1", prog); err != nil {
		t.Fatalf("Put: %v", err)
	}
	loaded, err := s.Get("k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	want, _ := vm.MarshalProgram(prog)
	got, _ := vm.MarshalProgram(loaded)
	if !bytes.Equal(got, want) {
		t.Error("program changed through the cache")
	}

	results, err := loaded.Invoke(context.Background(), "fib", []string{"10"})
	if err != nil || results[0].Int != 55 {
		t.Errorf("~fib(10) from cache = %v, %v; want 55", results, err)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrNotFound", err)
	}
}

func TestCompileHitsCache(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	files := []compiler.SourceFile{{Name: "fib.rs2", Text: fibSource}}
	if _, err := s.Compile(files); err != nil {
		t.Fatalf("first Compile: %v", err)
	}

	// Same meaning, different layout and file name: same key.
	relaid := []compiler.SourceFile{{Name: "other.rs2", Text: `[proc,fib](int $n)(int)
if ($n < 2) { return($n); }
return(calc(~fib(calc($n - 1)) + ~fib(calc($n - 2))));`}}
	prog, err := s.Compile(relaid)
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if n, _ := s.Len(); n != 1 {
		t.Errorf("cache holds %d programs, want 1", n)
	}
	if prog.Proc("fib") == nil {
		t.Error("cached program lost ~fib")
	}

	changed := []compiler.SourceFile{{Name: "fib.rs2", Text: fibSource + "\n[proc,one]()(int) return(1);"}}
	if _, err := s.Compile(changed); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Len(); n != 2 {
		t.Errorf("cache holds %d programs, want 2", n)
	}
}

func TestCompileParamRenameIsNewEntry(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Compile([]compiler.SourceFile{{Name: "fib.rs2", Text: fibSource}}); err != nil {
		t.Fatal(err)
	}

	renamed := []compiler.SourceFile{{Name: "fib.rs2", Text: `[proc,fib](int $x)(int)
if ($x < 2) { return($x); }
return(calc(~fib(calc($x - 1)) + ~fib(calc($x - 2))));`}}
	prog, err := s.Compile(renamed)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n, _ := s.Len(); n != 2 {
		t.Errorf("cache holds %d programs, want 2", n)
	}
	entry := prog.Proc("fib")
	if entry == nil {
		t.Fatal("program lost ~fib")
	}
	if len(entry.ParamNames) != 1 || entry.ParamNames[0] != "x" {
		t.Errorf("ParamNames = %v, want [x]", entry.ParamNames)
	}
	if _, err := prog.Invoke(context.Background(), "fib", []string{"nope"}); err == nil || !strings.Contains(err.Error(), "$x") {
		t.Errorf("argument error = %v, want it to name $x", err)
	}
}

func TestCompileErrorsNotCached(t *testing.T) {
	s := openTemp(t)
	_, err := s.Compile([]compiler.SourceFile{{Name: "bad.rs2", Text: "[proc,a] ~missing;"}})
	var resolveErr *compiler.ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("error = %v, want *compiler.ResolveError", err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("cache holds %d programs after a failed compile", n)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	prog, _ := compiler.Compile(fibSource)
	if err := s.Put("persist", prog); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get("persist"); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestPrune(t *testing.T) {
	s := openTemp(t)
	prog, _ := compiler.Compile(fibSource)
	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put(k, prog); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := s.Prune(1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if n, _ := s.Len(); n != 1 {
		t.Errorf("%d entries left, want 1", n)
	}
}
