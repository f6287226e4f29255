// rsc compiles, checks and runs script procedures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/rsc/cache"
	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/manifest"
	"github.com/chazu/rsc/server"
	"github.com/chazu/rsc/vm"
)

var log = commonlog.GetLogger("rsc")

func main() {
	dir := flag.String("C", ".", "Project directory (rsc.toml is searched upward from here)")
	verbosity := flag.Int("v", 0, "Log verbosity (overrides [log] verbosity)")
	noCache := flag.Bool("no-cache", false, "Bypass the compiled program cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rsc [options] <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run [flags] [proc] [args...]  Run a procedure (default: [project] entry)\n")
	fmt.Fprintf(os.Stderr, "  run -data file [proc] [args]  Run once per line of file, its fields appended\n")
		fmt.Fprintf(os.Stderr, "  check [-lock]                 Type-check the scripts, report changed procedures\n")
		fmt.Fprintf(os.Stderr, "  procs                         List procedure signatures\n")
		fmt.Fprintf(os.Stderr, "  disasm [proc]                 Disassemble the compiled program\n")
		fmt.Fprintf(os.Stderr, "  serve [-addr host:port]       Serve ScriptService over Connect\n")
		fmt.Fprintf(os.Stderr, "  lsp                           Start the language server on stdio\n")
		fmt.Fprintf(os.Stderr, "  cache [-prune n]              Show or prune the program cache\n")
	fmt.Fprintf(os.Stderr, "  config show|init [-name n]    Print the effective rsc.toml or create one\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rsc run fib 20\n")
		fmt.Fprintf(os.Stderr, "  rsc run -budget 1000 spin 1\n")
	fmt.Fprintf(os.Stderr, "  rsc run -data input.txt distance\n")
		fmt.Fprintf(os.Stderr, "  RSC_ENV=ci rsc check -lock\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	proj, err := openProject(*dir, os.Getenv)
	if err != nil {
		PrintErrorMessage("Config Error", err)
		os.Exit(1)
	}
	defer proj.close()

	verbositySet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			verbositySet = true
		}
	})
	configureLogging(proj.manifest, *verbosity, verbositySet)
	if *noCache {
		proj.manifest.Cache.Enabled = false
	}

	var cmdErr error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "run":
		cmdErr = cmdRun(proj, rest)
	case "check":
		cmdErr = cmdCheck(proj, rest)
	case "procs":
		cmdErr = cmdProcs(proj)
	case "disasm":
		cmdErr = cmdDisasm(proj, rest)
	case "serve":
		cmdErr = cmdServe(proj, rest)
	case "lsp":
		cmdErr = cmdLSP(proj)
	case "cache":
		cmdErr = cmdCache(proj, rest)
	case "config":
		cmdErr = cmdConfig(proj, *dir, rest)
	default:
		PrintErrorMessage("Usage", fmt.Errorf("unknown command %q", cmd))
		flag.Usage()
		proj.close()
		os.Exit(2)
	}

	if cmdErr != nil {
		reportError(cmdErr, proj.files)
		proj.close()
		os.Exit(1)
	}
}

// configureLogging sets up commonlog from [log], with -v taking precedence.
func configureLogging(m *manifest.Manifest, verbosity int, override bool) {
	if !override {
		verbosity = m.Log.Verbosity
	}
	var path *string
	if m.Log.File != "" {
		file := m.Log.File
		path = &file
	}
	commonlog.Configure(verbosity, path)
}

func cmdRun(proj *project, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	depth := fs.Int("depth", 0, "Maximum frame depth (0: [run] or VM default)")
	budget := fs.Int64("budget", 0, "Instruction budget (0: [run] or VM default, negative: unlimited)")
	timeout := fs.Duration("timeout", 0, "Abort after this long")
	trace := fs.Bool("trace", false, "Log every instruction at debug level")
	stats := fs.Bool("stats", false, "Print the instruction count")
	profile := fs.Int("profile", 0, "Print the n procedures that executed the most instructions")
	data := fs.String("data", "", "Run once per non-blank line of this file, its fields appended to the arguments")
	if err := fs.Parse(args); err != nil {
		return err
	}

	proc := proj.manifest.Project.Entry
	rest := fs.Args()
	if len(rest) > 0 {
		proc, rest = rest[0], rest[1:]
	}
	if proc == "" {
		return errors.New("no procedure given and no [project] entry configured")
	}

	if err := proj.load(); err != nil {
		return err
	}
	prog, err := proj.compile()
	if err != nil {
		return err
	}

	opts := proj.manifest.VMOptions()
	if *depth > 0 {
		opts = append(opts, vm.WithMaxFrameDepth(*depth))
	}
	if *budget != 0 {
		opts = append(opts, vm.WithMaxInstructions(*budget))
	}
	if *trace {
		opts = append(opts, vm.WithTrace(true))
	}
	var prof *vm.Profiler
	if *profile > 0 {
		prof = vm.NewProfiler(prog)
		opts = append(opts, vm.WithProfiler(prof))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if *data != "" {
		err := runDataFile(ctx, prog, proc, rest, *data, opts...)
		if prof != nil {
			printProfile(prof, *profile)
		}
		return err
	}

	start := time.Now()
	out, err := runProc(ctx, prog, proc, rest, opts...)
	if prof != nil {
		printProfile(prof, *profile)
	}
	if err != nil {
		return err
	}
	for _, v := range out.Results {
		fmt.Println(v.String())
	}
	if *stats {
		PrintInfoMessage("Stats", fmt.Sprintf("%d instructions in %s", out.Steps, time.Since(start).Round(time.Microsecond)))
	}
	return nil
}

func runDataFile(ctx context.Context, prog *vm.Program, proc string, fixed []string, path string, opts ...vm.Option) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read data file: %w", err)
	}
	defer f.Close()

	rows, err := runBatch(ctx, prog, proc, fixed, f, opts...)
	failed := 0
	for _, row := range rows {
		if row.Err != nil {
			failed++
			PrintWarningMessage(fmt.Sprintf("Line %d", row.Line), row.Err.Error())
			continue
		}
		results := make([]string, len(row.Results))
		for i, v := range row.Results {
			results[i] = v.String()
		}
		fmt.Printf("%d: %s -> %s\n", row.Line, strings.Join(row.Args, " "), strings.Join(results, " "))
	}
	if err != nil {
		return err
	}
	if total, n := batchTotal(rows); n > 0 {
		PrintInfoMessage("Total", fmt.Sprintf("%d over %d lines", total, n))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed", failed, len(rows))
	}
	return nil
}

func cmdCheck(proj *project, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	writeLock := fs.Bool("lock", false, "Write .rsc/lock.toml with the current procedure hashes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := proj.load(); err != nil {
		return err
	}
	unit, err := compiler.Check(proj.files)
	if err != nil {
		return err
	}

	lockPath := proj.manifest.LockFilePath()
	old, err := manifest.ReadLock(lockPath)
	if err != nil {
		return err
	}
	current := lockFor(unit)
	if old != nil {
		for _, ch := range current.Diff(old) {
			PrintWarningMessage(strings.ToUpper(ch.Kind[:1])+ch.Kind[1:], "~"+ch.Name)
		}
	}

	PrintInfoMessage("OK", fmt.Sprintf("%d procedures in %d files", len(unit.Procs), len(proj.files)))

	if *writeLock {
		if err := manifest.WriteLock(lockPath, current); err != nil {
			return err
		}
		PrintInfoMessage("Locked", lockPath)
	}
	return nil
}

func cmdProcs(proj *project) error {
	prog, err := proj.reload()
	if err != nil {
		return err
	}
	for i := range prog.Procs {
		fmt.Println(prog.Procs[i].Signature())
	}
	return nil
}

func cmdDisasm(proj *project, args []string) error {
	prog, err := proj.reload()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Print(prog.Disassemble())
		return nil
	}
	for _, name := range args {
		entry := prog.Proc(name)
		if entry == nil {
			return fmt.Errorf("no procedure ~%s", name)
		}
		fmt.Print(prog.DisassembleProc(entry))
	}
	return nil
}

func cmdServe(proj *project, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", proj.manifest.Server.Addr, "Listen address")
	workers := fs.Int("workers", proj.manifest.Run.Workers, "Execution pool size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Fail fast on a broken project; requests reload it afterwards.
	if _, err := proj.reload(); err != nil {
		return err
	}

	srv := server.New(
		server.WithWorkers(*workers),
		server.WithVMOptions(proj.manifest.VMOptions()...),
		server.WithCompileFunc(proj.compileFiles),
		server.WithProject(proj.reload),
	)
	defer srv.Stop()

	PrintInfoMessage("Serving", fmt.Sprintf("%s on http://%s", proj.manifest.ScriptsPath(), *addr))
	return srv.ListenAndServe(*addr)
}

func cmdLSP(proj *project) error {
	if err := proj.load(); err != nil {
		return err
	}
	return server.NewLSP(proj.absFiles()).Run()
}

func cmdCache(proj *project, args []string) error {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	prune := fs.Int("prune", -1, "Keep only the newest n programs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := cache.Open(proj.manifest.CachePath())
	if err != nil {
		return err
	}
	defer store.Close()

	if *prune >= 0 {
		removed, err := store.Prune(*prune)
		if err != nil {
			return err
		}
		PrintInfoMessage("Pruned", fmt.Sprintf("%d programs", removed))
	}
	n, err := store.Len()
	if err != nil {
		return err
	}
	PrintInfoMessage("Cache", fmt.Sprintf("%d programs in %s", n, proj.manifest.CachePath()))
	return nil
}

func cmdConfig(proj *project, dir string, args []string) error {
	if len(args) == 0 {
		return errors.New("config needs a subcommand: show or init")
	}
	switch args[0] {
	case "show":
		if proj.manifest.Dir != "" {
			PrintInfoMessage("Project", proj.manifest.Dir)
		}
		return proj.manifest.Encode(os.Stdout)
	case "init":
		fs := flag.NewFlagSet("config init", flag.ExitOnError)
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		name := fs.String("name", filepath.Base(abs), "Project name")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		path, err := manifest.Init(abs, *name)
		if err != nil {
			return err
		}
		PrintInfoMessage("Created", path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
}
