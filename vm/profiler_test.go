package vm

import (
	"context"
	"sync"
	"testing"
)

func TestProfiler_CountsCallsAndSteps(t *testing.T) {
	prog := buildFactorial()
	prof := NewProfiler(prog)
	interp := NewInterpreter(prog, WithProfiler(prof))

	results, err := interp.Call(context.Background(), "fact", []Value{IntValue(5)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if results[0].Int != 120 {
		t.Fatalf("fact(5) = %v, want 120", results[0])
	}

	p, ok := prof.Profile("fact")
	if !ok {
		t.Fatal("no profile for fact")
	}
	if p.Calls != 5 {
		t.Errorf("calls = %d, want 5", p.Calls)
	}
	if p.Steps != uint64(interp.Steps()) {
		t.Errorf("steps = %d, want %d", p.Steps, interp.Steps())
	}

	stats := prof.Stats()
	if stats.CalledProcs != 1 || stats.TotalCalls != 5 || stats.TotalSteps != p.Steps {
		t.Errorf("stats = %+v", stats)
	}
	if _, ok := prof.Profile("missing"); ok {
		t.Error("profile reported for an unknown procedure")
	}
}

func TestProfiler_SharedAcrossInterpreters(t *testing.T) {
	prog := buildFactorial()
	prof := NewProfiler(prog)

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			interp := NewInterpreter(prog, WithProfiler(prof))
			if _, err := interp.Call(context.Background(), "fact", []Value{IntValue(3)}); err != nil {
				t.Errorf("Call: %v", err)
			}
		}()
	}
	wg.Wait()

	if p, _ := prof.Profile("fact"); p.Calls != 24 {
		t.Errorf("calls = %d, want 24", p.Calls)
	}
}

func TestProfiler_TopProcsAndReset(t *testing.T) {
	prog := buildFactorial()
	prof := NewProfiler(prog)

	if top := prof.TopProcs(10); len(top) != 0 {
		t.Errorf("TopProcs before any call = %+v, want none", top)
	}
	if _, err := NewInterpreter(prog, WithProfiler(prof)).Call(context.Background(), "fact", []Value{IntValue(2)}); err != nil {
		t.Fatal(err)
	}
	top := prof.TopProcs(10)
	if len(top) != 1 || top[0].Name != "fact" || top[0].Calls != 2 {
		t.Errorf("TopProcs = %+v", top)
	}
	if got := prof.TopProcs(0); len(got) != 0 {
		t.Errorf("TopProcs(0) = %+v", got)
	}

	prof.Reset()
	if stats := prof.Stats(); stats.TotalCalls != 0 || stats.TotalSteps != 0 {
		t.Errorf("stats after Reset = %+v", stats)
	}
}
