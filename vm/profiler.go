package vm

import (
	"sort"
	"sync/atomic"
)

// Profiler counts procedure invocations and the instructions executed in
// each procedure's own frames. One Profiler may be shared by concurrent
// interpreters running the same Program.
type Profiler struct {
	program  *Program
	profiles []ProcProfile
}

// ProcProfile holds profiling data for a single procedure.
type ProcProfile struct {
	Name  string
	Calls uint64 // atomic
	Steps uint64 // atomic; instructions executed while this proc was on top
}

// NewProfiler creates a profiler for p.
func NewProfiler(p *Program) *Profiler {
	prof := &Profiler{
		program:  p,
		profiles: make([]ProcProfile, len(p.Procs)),
	}
	for i := range p.Procs {
		prof.profiles[i].Name = p.Procs[i].Name
	}
	return prof
}

// WithProfiler records every call and instruction into prof. prof must have
// been created for the interpreter's program.
func WithProfiler(prof *Profiler) Option {
	return func(i *Interpreter) { i.profiler = prof }
}

func (p *Profiler) recordCall(proc *ProcEntry) int {
	idx, ok := p.program.Lookup(proc.Name)
	if !ok {
		return -1
	}
	atomic.AddUint64(&p.profiles[idx].Calls, 1)
	return idx
}

func (p *Profiler) recordStep(idx int) {
	atomic.AddUint64(&p.profiles[idx].Steps, 1)
}

// Profile returns a snapshot of the profile for name.
func (p *Profiler) Profile(name string) (ProcProfile, bool) {
	idx, ok := p.program.Lookup(name)
	if !ok {
		return ProcProfile{}, false
	}
	return p.snapshot(idx), true
}

func (p *Profiler) snapshot(idx int) ProcProfile {
	return ProcProfile{
		Name:  p.profiles[idx].Name,
		Calls: atomic.LoadUint64(&p.profiles[idx].Calls),
		Steps: atomic.LoadUint64(&p.profiles[idx].Steps),
	}
}

// ProfilerStats holds aggregate profiling statistics.
type ProfilerStats struct {
	CalledProcs int    // procedures invoked at least once
	TotalCalls  uint64 // invocations across all procedures
	TotalSteps  uint64 // instructions across all procedures
}

// Stats returns aggregate profiling statistics.
func (p *Profiler) Stats() ProfilerStats {
	var stats ProfilerStats
	for idx := range p.profiles {
		snap := p.snapshot(idx)
		if snap.Calls > 0 {
			stats.CalledProcs++
		}
		stats.TotalCalls += snap.Calls
		stats.TotalSteps += snap.Steps
	}
	return stats
}

// TopProcs returns the n procedures that executed the most instructions.
// Procedures never called are left out.
func (p *Profiler) TopProcs(n int) []ProcProfile {
	var all []ProcProfile
	for idx := range p.profiles {
		if snap := p.snapshot(idx); snap.Calls > 0 {
			all = append(all, snap)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Steps != all[j].Steps {
			return all[i].Steps > all[j].Steps
		}
		return all[i].Name < all[j].Name
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Reset clears all profiling data.
func (p *Profiler) Reset() {
	for idx := range p.profiles {
		atomic.StoreUint64(&p.profiles[idx].Calls, 0)
		atomic.StoreUint64(&p.profiles[idx].Steps, 0)
	}
}
