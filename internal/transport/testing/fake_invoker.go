// Package testing provides a scripted fake Invoker for tests that need
// deterministic transport behavior without a network.
package testing

import (
	"context"
	"sync"

	"github.com/overssh/overssh/internal/target"
	"github.com/overssh/overssh/internal/transport"
)

// FakeInvoker returns pre-scripted results in order. When the script is
// exhausted it keeps returning the last result, so unbounded loops can
// run against a fixed steady state.
type FakeInvoker struct {
	mu      sync.Mutex
	script  []transport.Result
	calls   []Call
	nextIdx int
}

// Call records one Invoke invocation for assertions.
type Call struct {
	Target    target.Target
	Options   transport.Options
	RemoteCmd string
}

// NewFakeInvoker creates a fake that plays back the given results in order.
func NewFakeInvoker(script ...transport.Result) *FakeInvoker {
	return &FakeInvoker{script: script}
}

// Succeed is a convenience result for a zero-exit remote command.
func Succeed(output string) transport.Result {
	return transport.Result{Outcome: transport.OutcomeSuccess, Output: []byte(output)}
}

// Deny is a convenience result for a reached host that refused us.
func Deny(exitCode int) transport.Result {
	return transport.Result{Outcome: transport.OutcomeDenied, ExitCode: exitCode}
}

// Unreach is a convenience result for a connection that never happened.
func Unreach(err error) transport.Result {
	return transport.Result{Outcome: transport.OutcomeUnreachable, Err: err}
}

// Invoke returns the next scripted result and records the call.
func (f *FakeInvoker) Invoke(ctx context.Context, tgt target.Target, opts transport.Options, remoteCmd string) transport.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Target: tgt, Options: opts, RemoteCmd: remoteCmd})

	if len(f.script) == 0 {
		return transport.Result{Outcome: transport.OutcomeSuccess}
	}

	idx := f.nextIdx
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	} else {
		f.nextIdx++
	}
	return f.script[idx]
}

// Calls returns a copy of all recorded invocations.
func (f *FakeInvoker) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many times Invoke was called.
func (f *FakeInvoker) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
