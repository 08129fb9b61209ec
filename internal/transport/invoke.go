// Package transport runs single remote commands over SSH and classifies
// each attempt into one of three outcomes. The classification boundary
// lives here and nowhere else: "host down" and "host up but access
// denied" must never be conflated, because the two tell the user to fix
// entirely different things.
package transport

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/overssh/overssh/internal/target"
)

// Outcome is the tri-state classification of one transport attempt.
type Outcome int

const (
	// OutcomeUnreachable means no connection could be established at all.
	OutcomeUnreachable Outcome = iota
	// OutcomeDenied means the host was reached but authentication or the
	// remote command was rejected.
	OutcomeDenied
	// OutcomeSuccess means the remote command ran with exit status zero.
	OutcomeSuccess
)

// String returns a short human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDenied:
		return "denied"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Result is the outcome of one Invoke call. Err is set for Unreachable
// and for Denied attempts that never ran the command; ExitCode carries
// the remote command's status when it did run.
type Result struct {
	Outcome  Outcome
	Output   []byte
	Stderr   []byte
	ExitCode int
	Err      error
}

// Invoker runs one remote command per call. The real implementation dials
// a fresh connection each time so an invocation measures a full
// round-trip; fakes live in the testing sub-package.
type Invoker interface {
	Invoke(ctx context.Context, tgt target.Target, opts Options, remoteCmd string) Result
}

// SSHInvoker is the production Invoker backed by golang.org/x/crypto/ssh.
type SSHInvoker struct{}

// NewInvoker returns the production SSH-backed invoker.
func NewInvoker() *SSHInvoker {
	return &SSHInvoker{}
}

// Invoke dials the target, runs remoteCmd in a session, and classifies
// the result. An attempt in flight always finishes naturally and is
// classified by what happened on the wire; cancellation between attempts
// is the caller's job. Mapping a cancelled context onto Unreachable here
// would report a host that just completed a handshake as down.
func (in *SSHInvoker) Invoke(ctx context.Context, tgt target.Target, opts Options, remoteCmd string) Result {
	settings := Resolve(tgt, opts)

	c, err := dial(settings)
	if err != nil {
		return Result{Outcome: classifyDialError(err), Err: err}
	}
	defer c.Close()

	session, err := c.NewSession()
	if err != nil {
		return Result{Outcome: OutcomeDenied, Err: err}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(remoteCmd); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			// Command ran on the remote side and failed: the host is up.
			return Result{
				Outcome:  OutcomeDenied,
				Output:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
				ExitCode: exitErr.ExitStatus(),
			}
		}
		// Session died without an exit status (connection dropped).
		return Result{Outcome: OutcomeUnreachable, Err: err}
	}

	return Result{
		Outcome: OutcomeSuccess,
		Output:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
	}
}

// classifyDialError maps a dial or handshake failure onto the tri-state.
// TCP-level failures are always Unreachable. Handshake failures mean TCP
// connected, so they default to Denied, except the error texts that are
// really the network dying under us mid-handshake.
func classifyDialError(err error) Outcome {
	var de *dialError
	if errors.As(err, &de) {
		return OutcomeUnreachable
	}

	var he *handshakeError
	if errors.As(err, &he) {
		if looksLikeNetworkFailure(he.cause) {
			return OutcomeUnreachable
		}
		return OutcomeDenied
	}

	// No auth methods, bad known_hosts, and other local setup problems:
	// we never reached the host, but the failure is ours, not the
	// network's. Denied keeps the engine from reporting a healthy host
	// as down when the local keys are missing.
	return OutcomeDenied
}

// looksLikeNetworkFailure inspects an error's text for the signatures of
// a connection-level failure. String matching is the only option here:
// the ssh package folds network errors into opaque handshake errors.
func looksLikeNetworkFailure(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, sig := range []string{
		"timeout",
		"i/o timeout",
		"connection refused",
		"connection reset",
		"no route to host",
		"network is unreachable",
		"host is down",
		"broken pipe",
		"eof",
	} {
		if strings.Contains(errStr, sig) {
			return true
		}
	}
	return false
}
