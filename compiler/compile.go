package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/rsc/vm"
)

var log = commonlog.GetLogger("rsc.compiler")

// SourceExt is the extension of script files.
const SourceExt = ".rs2"

// SourceFile is one named unit of script source.
type SourceFile struct {
	Name string
	Text string
}

// Compile compiles a single anonymous source text.
func Compile(src string) (*vm.Program, error) {
	return CompileFiles([]SourceFile{{Text: src}})
}

// CompileFiles compiles files as one translation unit. Compilation stops at
// the first error, which is a *LexError, *ParseError or *ResolveError.
func CompileFiles(files []SourceFile) (*vm.Program, error) {
	unit, err := Check(files)
	if err != nil {
		return nil, err
	}
	prog := Generate(unit)
	log.Debugf("compiled %d procedures from %d files (%d bytes of code, %d constants)",
		len(prog.Procs), len(files), len(prog.Code), len(prog.Constants))
	return prog, nil
}

// Check parses and resolves files without generating code.
func Check(files []SourceFile) (*Unit, error) {
	scripts := make([]*Script, 0, len(files))
	for _, f := range files {
		script, err := ParseScript(f.Name, f.Text)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return Resolve(scripts...)
}

// LoadDir reads every script file under dir, sorted by path so the
// procedure table order is stable.
func LoadDir(dir string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, SourceExt) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		files = append(files, SourceFile{Name: filepath.ToSlash(rel), Text: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading scripts from %s: %w", dir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	log.Debugf("loaded %d script files from %s", len(files), dir)
	return files, nil
}

// CompileDir loads and compiles every script file under dir.
func CompileDir(dir string) (*vm.Program, error) {
	files, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", SourceExt, dir)
	}
	return CompileFiles(files)
}
