package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/chazu/rsc/compiler"
	rscv1 "github.com/chazu/rsc/gen/rsc/v1"
	"github.com/chazu/rsc/gen/rsc/v1/rscv1connect"
	"github.com/chazu/rsc/vm"
)

// ScriptService implements the ScriptService Connect handler.
type ScriptService struct {
	rscv1connect.UnimplementedScriptServiceHandler
	runner  *Runner
	compile CompileFunc
	project func() (*vm.Program, error)
	opts    []vm.Option

	// Limits in force when a request asks for none. Requests may only
	// lower them.
	maxFrameDepth   int
	maxInstructions int64 // negative: unlimited
}

// CompileFunc turns sources into a program. The cache supplies one.
type CompileFunc func([]compiler.SourceFile) (*vm.Program, error)

// NewScriptService creates a ScriptService. project may be nil, in which
// case every request must carry its sources.
func NewScriptService(runner *Runner, compile CompileFunc, project func() (*vm.Program, error), opts ...vm.Option) *ScriptService {
	if compile == nil {
		compile = compiler.CompileFiles
	}
	s := &ScriptService{
		runner:  runner,
		compile: compile,
		project: project,
		opts:    opts,
	}
	s.maxFrameDepth, s.maxInstructions = effectiveLimits(opts)
	return s
}

// effectiveLimits resolves what opts leave an interpreter with.
func effectiveLimits(opts []vm.Option) (int, int64) {
	interp := vm.NewInterpreter(nil, opts...)
	depth := interp.MaxFrameDepth
	if depth <= 0 {
		depth = vm.DefaultMaxFrameDepth
	}
	budget := interp.MaxInstructions
	if budget == 0 {
		budget = vm.DefaultMaxInstructions
	}
	return depth, budget
}

// Handler returns the mount path and HTTP handler for the service.
func (s *ScriptService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	return rscv1connect.NewScriptServiceHandler(s, opts...)
}

// requestLimits turns the limits a request asks for into options. A request
// may tighten the server's limits but never raise them.
func (s *ScriptService) requestLimits(msg *rscv1.RunRequest) ([]vm.Option, error) {
	if msg.MaxFrameDepth < 0 || msg.MaxInstructions < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("limits must not be negative (max_frame_depth %d, max_instructions %d)",
				msg.MaxFrameDepth, msg.MaxInstructions))
	}
	opts := append([]vm.Option(nil), s.opts...)
	if d := int(msg.MaxFrameDepth); d > 0 && d < s.maxFrameDepth {
		opts = append(opts, vm.WithMaxFrameDepth(d))
	}
	if n := msg.MaxInstructions; n > 0 && (s.maxInstructions < 0 || n < s.maxInstructions) {
		opts = append(opts, vm.WithMaxInstructions(n))
	}
	return opts, nil
}

func toSourceFiles(sources []*rscv1.Source) []compiler.SourceFile {
	files := make([]compiler.SourceFile, len(sources))
	for i, src := range sources {
		files[i] = compiler.SourceFile{Name: src.GetName(), Text: src.GetText()}
	}
	return files
}

func (s *ScriptService) program(sources []*rscv1.Source) (*vm.Program, error) {
	if len(sources) > 0 {
		prog, err := s.compile(toSourceFiles(sources))
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return prog, nil
	}
	if s.project == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("sources are required"))
	}
	prog, err := s.project()
	if err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return prog, nil
}

// Run compiles (or reuses) a program and executes one procedure.
func (s *ScriptService) Run(
	ctx context.Context,
	req *connect.Request[rscv1.RunRequest],
) (*connect.Response[rscv1.RunResponse], error) {
	msg := req.Msg
	if msg.Proc == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("proc is required"))
	}
	opts, err := s.requestLimits(msg)
	if err != nil {
		return nil, err
	}

	prog, err := s.program(msg.Sources)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log.Debugf("run %s: ~%s%v", id, msg.Proc, msg.Args)

	exec, err := s.runner.Run(ctx, prog, msg.Proc, msg.Args, opts...)
	resp := &rscv1.RunResponse{ExecutionId: id}
	if err != nil {
		var rtErr *vm.RuntimeError
		if !errors.As(err, &rtErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, connect.NewError(connect.CodeCanceled, ctxErr)
			}
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		log.Infof("run %s failed: %s", id, rtErr.Kind)
		resp.Error = &rscv1.RunError{
			Kind:      rtErr.Kind.String(),
			Message:   rtErr.Message,
			CallChain: toCallSites(rtErr.CallChain),
		}
		return connect.NewResponse(resp), nil
	}

	resp.Success = true
	resp.Steps = exec.Steps
	for _, v := range exec.Results {
		resp.Results = append(resp.Results, v.String())
		resp.Types = append(resp.Types, v.Type.String())
	}
	return connect.NewResponse(resp), nil
}

// Check compiles sources and reports the first error, if any.
func (s *ScriptService) Check(
	ctx context.Context,
	req *connect.Request[rscv1.CheckRequest],
) (*connect.Response[rscv1.CheckResponse], error) {
	if len(req.Msg.Sources) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("sources are required"))
	}

	unit, err := compiler.Check(toSourceFiles(req.Msg.Sources))
	if err != nil {
		file, pos, ok := compiler.ErrorPosition(err)
		if !ok {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(&rscv1.CheckResponse{
			Diagnostics: []*rscv1.Diagnostic{{
				File:    file,
				Line:    int32(pos.Line),
				Column:  int32(pos.Column),
				Message: err.Error(),
			}},
		}), nil
	}

	resp := &rscv1.CheckResponse{Valid: true}
	for _, sig := range unit.Sigs {
		resp.Procs = append(resp.Procs, sig.Name)
	}
	return connect.NewResponse(resp), nil
}

func toCallSites(chain []vm.CallSite) []*rscv1.CallSite {
	sites := make([]*rscv1.CallSite, len(chain))
	for i, site := range chain {
		sites[i] = &rscv1.CallSite{
			Proc:  site.Proc,
			Depth: int32(site.Depth),
			Pc:    int32(site.PC),
		}
	}
	return sites
}
