package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chazu/rsc/cache"
	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/compiler/hash"
	"github.com/chazu/rsc/manifest"
	"github.com/chazu/rsc/vm"
)

// project is an rsc.toml project with its loaded scripts.
type project struct {
	manifest *manifest.Manifest
	files    []compiler.SourceFile

	mu    sync.Mutex // guards files and store while serving
	store *cache.Store
}

// openProject finds rsc.toml at or above dir. Without one the defaults are
// rooted at dir. getenv supplies RSC_* overrides.
func openProject(dir string, getenv func(string) string) (*project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", dir, err)
	}
	m, err := manifest.FindAndLoad(abs)
	if err != nil {
		return nil, err
	}
	if m == nil {
		log.Debugf("no %s found, using defaults in %s", manifest.FileName, abs)
		m = manifest.Default(abs)
	}
	if err := m.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return &project{manifest: m}, nil
}

// load reads the scripts directory.
func (p *project) load() error {
	dir := p.manifest.ScriptsPath()
	files, err := compiler.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files in %s", compiler.SourceExt, dir)
	}
	p.files = files
	return nil
}

// compile compiles the loaded scripts, going through the cache when it is
// enabled.
func (p *project) compile() (*vm.Program, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.compileLocked(p.files)
}

// compileFiles compiles request sources. It is safe for concurrent use.
func (p *project) compileFiles(files []compiler.SourceFile) (*vm.Program, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.compileLocked(files)
}

func (p *project) compileLocked(files []compiler.SourceFile) (*vm.Program, error) {
	if !p.manifest.Cache.Enabled {
		return compiler.CompileFiles(files)
	}
	if p.store == nil {
		store, err := cache.Open(p.manifest.CachePath())
		if err != nil {
			log.Warningf("cache disabled: %s", err)
			p.manifest.Cache.Enabled = false
			return compiler.CompileFiles(files)
		}
		p.store = store
	}
	return p.store.Compile(files)
}

// reload rereads the scripts and compiles them. It is safe for concurrent
// use.
func (p *project) reload() (*vm.Program, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.load(); err != nil {
		return nil, err
	}
	return p.compileLocked(p.files)
}

// absFiles returns the scripts named by absolute path.
func (p *project) absFiles() []compiler.SourceFile {
	root := p.manifest.ScriptsPath()
	out := make([]compiler.SourceFile, len(p.files))
	for i, f := range p.files {
		out[i] = compiler.SourceFile{Name: filepath.Join(root, filepath.FromSlash(f.Name)), Text: f.Text}
	}
	return out
}

func (p *project) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			log.Warningf("closing cache: %s", err)
		}
		p.store = nil
	}
}

// lockFor hashes a checked unit.
func lockFor(unit *compiler.Unit) *manifest.LockFile {
	lf := &manifest.LockFile{Unit: hash.Hex(hash.HashUnit(unit))}
	for _, decl := range unit.Procs {
		lf.Procs = append(lf.Procs, manifest.LockedProc{
			Name: decl.Name,
			Hash: hash.Hex(hash.HashProc(decl)),
		})
	}
	return lf
}

// outcome is the result of one procedure run.
type outcome struct {
	Results []vm.Value
	Steps   int64
}

// runProc executes proc with string arguments on a fresh interpreter.
func runProc(ctx context.Context, prog *vm.Program, proc string, args []string, opts ...vm.Option) (*outcome, error) {
	values, err := prog.ParseArgs(proc, args)
	if err != nil {
		return nil, err
	}
	interp := vm.NewInterpreter(prog, opts...)
	results, err := interp.Call(ctx, proc, values)
	if err != nil {
		return nil, err
	}
	return &outcome{Results: results, Steps: interp.Steps()}, nil
}

// batchRow is one line of a data file run.
type batchRow struct {
	Line    int
	Args    []string
	Results []vm.Value
	Steps   int64
	Err     error
}

// runBatch calls proc once for every non-blank line of data. The line's
// whitespace-separated fields follow the fixed arguments. A failing line is
// recorded and the batch goes on; cancellation stops it.
func runBatch(ctx context.Context, prog *vm.Program, proc string, fixed []string, data io.Reader, opts ...vm.Option) ([]batchRow, error) {
	if prog.Proc(proc) == nil {
		return nil, fmt.Errorf("no procedure ~%s", proc)
	}
	var rows []batchRow
	sc := bufio.NewScanner(data)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := batchRow{Line: n, Args: append(append([]string(nil), fixed...), fields...)}
		out, err := runProc(ctx, prog, proc, row.Args, opts...)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rows, ctxErr
		}
		if err != nil {
			row.Err = err
		} else {
			row.Results, row.Steps = out.Results, out.Steps
		}
		rows = append(rows, row)
	}
	return rows, sc.Err()
}

// batchTotal sums the rows that produced exactly one int or long.
func batchTotal(rows []batchRow) (total int64, counted int) {
	for _, row := range rows {
		if row.Err != nil || len(row.Results) != 1 || !row.Results[0].Type.IsNumeric() {
			continue
		}
		total += row.Results[0].Int
		counted++
	}
	return total, counted
}
