package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/vm"
)

// ---------------------------------------------------------------------------
// Shared test infrastructure for server package tests.
// ---------------------------------------------------------------------------

const testScripts = `
[proc,fib](int $n)(int)
if ($n < 2) {
	return($n);
}
return(calc(~fib(calc($n - 1)) + ~fib(calc($n - 2))));

[proc,divmod](int $a, int $b)(int, int)
return(calc($a / $b), calc($a % $b));

[proc,spin](int $n)(int)
while ($n > 0) {
	$n = calc($n + 1);
}
return($n);

[proc,down](int $n)(int)
return(~down(calc($n + 1)));
`

func testProgram(t *testing.T) *vm.Program {
	t.Helper()
	prog, err := compiler.Compile(testScripts)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return prog
}

// newTestService creates a ScriptService whose project is testScripts.
func newTestService(t *testing.T) *ScriptService {
	t.Helper()
	prog := testProgram(t)
	runner := NewRunner(2)
	t.Cleanup(runner.Stop)
	return NewScriptService(runner, nil, func() (*vm.Program, error) { return prog, nil })
}

// newTestHTTPServer serves a full ScriptServer over httptest.
func newTestHTTPServer(t *testing.T, opts ...ServerOption) *httptest.Server {
	t.Helper()
	prog := testProgram(t)
	opts = append([]ServerOption{WithProject(func() (*vm.Program, error) { return prog, nil })}, opts...)
	s := New(opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
	})
	return ts
}

// ---------------------------------------------------------------------------
// Request builders
// ---------------------------------------------------------------------------

func connectReq[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

func bg() context.Context {
	return context.Background()
}

func asConnectError(err error, target **connect.Error) bool {
	return errors.As(err, target)
}
