package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/vm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// maxChainLines caps how much of a runtime call chain is printed.
const maxChainLines = 16

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// reportError prints err in the form that suits its kind. files are used to
// show the offending line of a compile error.
func reportError(err error, files []compiler.SourceFile) {
	var rtErr *vm.RuntimeError
	if errors.As(err, &rtErr) {
		printRuntimeError(rtErr)
		return
	}
	if _, _, ok := compiler.ErrorPosition(err); ok {
		printCompileError(err, files)
		return
	}
	PrintErrorMessage("Error", err)
}

func printRuntimeError(e *vm.RuntimeError) {
	ErrorStyleBG.Print(e.Kind.String())
	ErrorColorFG.Println(" " + e.Message)
	for i, site := range e.CallChain {
		if i == maxChainLines {
			fmt.Printf("    ... %d more frames\n", len(e.CallChain)-i)
			break
		}
		fmt.Printf("    at ~%s (depth %d, pc %04d)\n", site.Proc, site.Depth, site.PC)
	}
}

// printCompileError displays a banner, the error and the source line with a
// caret under the failing column.
func printCompileError(err error, files []compiler.SourceFile) {
	file, pos, _ := compiler.ErrorPosition(err)

	fmt.Print("\n-- ")
	tag := "Compile Error"
	ErrorStyleBG.Print(tag)
	fmt.Print(" ")

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}
	dashCount := bannerLen - len(file) - len(tag) - 1
	if dashCount < 3 {
		dashCount = 3
	}
	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(file)

	fmt.Println(err.Error())

	line, ok := sourceLine(files, file, pos.Line)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%4d | ", pos.Line)
	fmt.Println()
	fmt.Println(gutter + line)
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	ErrorColorFG.Println(strings.Repeat(" ", len(gutter)+col) + "^")
}

// sourceLine returns line n (1-based) of the named file with tabs flattened
// so a caret lines up underneath.
func sourceLine(files []compiler.SourceFile, name string, n int) (string, bool) {
	for _, f := range files {
		if f.Name != name {
			continue
		}
		lines := strings.Split(f.Text, "\n")
		if n < 1 || n > len(lines) {
			return "", false
		}
		line := strings.TrimRight(lines[n-1], "\r")
		return strings.ReplaceAll(line, "\t", " "), true
	}
	return "", false
}

// printProfile prints the n hottest procedures.
func printProfile(prof *vm.Profiler, n int) {
	stats := prof.Stats()
	PrintInfoMessage("Profile", fmt.Sprintf("%d calls, %d instructions", stats.TotalCalls, stats.TotalSteps))
	for _, p := range prof.TopProcs(n) {
		pct := 0.0
		if stats.TotalSteps > 0 {
			pct = 100 * float64(p.Steps) / float64(stats.TotalSteps)
		}
		fmt.Printf("  %-24s %10d calls %12d instrs %5.1f%%\n", "~"+p.Name, p.Calls, p.Steps, pct)
	}
}
