package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/rsc/vm"
)

// ErrRunnerStopped is returned for work submitted after Stop.
var ErrRunnerStopped = errors.New("runner stopped")

// runRequest represents a unit of work to be executed by a worker.
type runRequest struct {
	ctx  context.Context
	fn   func(context.Context) (any, error)
	done chan runResult
}

// runResult holds the return value from a job.
type runResult struct {
	value any
	err   error
}

// Runner executes jobs on a fixed pool of worker goroutines. Programs are
// shared; every execution gets its own interpreter, so jobs never share
// mutable VM state.
type Runner struct {
	requests chan runRequest
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRunner creates a Runner and starts its workers.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	r := &Runner{
		requests: make(chan runRequest, 64),
		quit:     make(chan struct{}),
	}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.loop()
	}
	return r
}

// loop processes requests until the runner stops.
func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case req := <-r.requests:
			req.done <- r.execute(req)
		case <-r.quit:
			return
		}
	}
}

// execute runs a job, recovering from panics.
func (r *Runner) execute(req runRequest) runResult {
	var result runResult
	if err := req.ctx.Err(); err != nil {
		result.err = err
		return result
	}
	func() {
		defer func() {
			if p := recover(); p != nil {
				result.err = fmt.Errorf("%v", p)
			}
		}()
		result.value, result.err = req.fn(req.ctx)
	}()
	return result
}

// Do submits fn to the pool and blocks until it completes or ctx ends.
func (r *Runner) Do(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	req := runRequest{
		ctx:  ctx,
		fn:   fn,
		done: make(chan runResult, 1),
	}
	select {
	case <-r.quit:
		return nil, ErrRunnerStopped
	default:
	}
	select {
	case r.requests <- req:
	case <-r.quit:
		return nil, ErrRunnerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-r.quit:
		return nil, ErrRunnerStopped
	case <-ctx.Done():
		// The interpreter polls ctx and will stop on its own.
		return nil, ctx.Err()
	}
}

// Execution is the outcome of one procedure run.
type Execution struct {
	Results []vm.Value
	Steps   int64
}

// Run parses args and executes proc on a fresh interpreter in the pool.
func (r *Runner) Run(ctx context.Context, prog *vm.Program, proc string, args []string, opts ...vm.Option) (*Execution, error) {
	v, err := r.Do(ctx, func(ctx context.Context) (any, error) {
		values, err := prog.ParseArgs(proc, args)
		if err != nil {
			return nil, err
		}
		interp := vm.NewInterpreter(prog, opts...)
		results, err := interp.Call(ctx, proc, values)
		if err != nil {
			return nil, err
		}
		return &Execution{Results: results, Steps: interp.Steps()}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Execution), nil
}

// Stop shuts down the workers and waits for running jobs to finish.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
		r.wg.Wait()
	})
}
