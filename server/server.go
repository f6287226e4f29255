// Package server exposes the compiler and VM over Connect RPC and the
// Language Server Protocol.
package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/rsc/gen/rsc/v1/rscv1connect"
	"github.com/chazu/rsc/vm"
)

var log = commonlog.GetLogger("rsc.server")

// ScriptServer serves ScriptService over Connect, gRPC and gRPC-Web.
type ScriptServer struct {
	runner *Runner
	mux    *http.ServeMux
}

// ServerOption configures a ScriptServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	workers     int
	compileFunc CompileFunc
	project     func() (*vm.Program, error)
	vmOpts      []vm.Option
	interceptor []connect.Interceptor
}

// WithWorkers sets the size of the execution pool.
func WithWorkers(n int) ServerOption {
	return func(c *serverConfig) { c.workers = n }
}

// WithCompileFunc sets how request sources are compiled. Without this,
// compiler.CompileFiles is used.
func WithCompileFunc(fn CompileFunc) ServerOption {
	return func(c *serverConfig) { c.compileFunc = fn }
}

// WithProject sets the program used by requests that carry no sources.
func WithProject(fn func() (*vm.Program, error)) ServerOption {
	return func(c *serverConfig) { c.project = fn }
}

// WithVMOptions sets the limits for every execution. A request may lower
// them but never raise them.
func WithVMOptions(opts ...vm.Option) ServerOption {
	return func(c *serverConfig) { c.vmOpts = opts }
}

// WithInterceptors adds Connect interceptors to every handler.
func WithInterceptors(interceptors ...connect.Interceptor) ServerOption {
	return func(c *serverConfig) { c.interceptor = append(c.interceptor, interceptors...) }
}

// New creates a ScriptServer.
func New(opts ...ServerOption) *ScriptServer {
	cfg := &serverConfig{workers: 4}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &ScriptServer{
		runner: NewRunner(cfg.workers),
		mux:    http.NewServeMux(),
	}

	svc := NewScriptService(s.runner, cfg.compileFunc, cfg.project, cfg.vmOpts...)
	path, handler := svc.Handler(connect.WithInterceptors(cfg.interceptor...))
	s.mux.Handle(path, handler)

	return s
}

// Handler returns the HTTP handler serving every procedure.
func (s *ScriptServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *ScriptServer) ListenAndServe(addr string) error {
	log.Noticef("listening on %s", addr)
	log.Noticef("  Connect (HTTP/JSON): http://%s%s", addr, rscv1connect.ScriptServiceRunProcedure)
	log.Noticef("  gRPC (binary):       grpc://%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Stop shuts down the execution pool.
func (s *ScriptServer) Stop() {
	s.runner.Stop()
}
