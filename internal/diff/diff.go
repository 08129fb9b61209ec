// Package diff compares a local file against its counterpart on a remote
// host. It fetches the remote content over the transport and drives the
// external differencing tool with the payload flags passed through
// verbatim.
//
// A connectivity failure and a missing remote file require different user
// remediation, so the pre-flight check fails with distinct messages and
// distinct exit statuses before the diff tool ever runs.
package diff

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/logger"
	"github.com/overssh/overssh/internal/target"
	"github.com/overssh/overssh/internal/transport"
	"github.com/overssh/overssh/internal/util"
)

// Request is one diff invocation: the local path, the raw remote target
// token, and the already-partitioned argument lists.
type Request struct {
	LocalPath     string
	RawTarget     string
	TransportArgs []string
	PayloadArgs   []string
}

// Orchestrator wires the transport, the external diff tool, and the
// optional colorizer together.
type Orchestrator struct {
	Invoker   transport.Invoker
	Tool      string // differencing utility, e.g. "diff"
	Colorizer string // optional, e.g. "colordiff"
	Colorize  bool   // pipe through the colorizer when it's available
	Stdout    io.Writer
	Stderr    io.Writer

	// runTool and lookPath are swappable so tests never exec anything.
	runTool  func(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error)
	lookPath func(name string) (string, error)

	log logger.Logger
}

// New creates an orchestrator around the given invoker and tool names.
func New(invoker transport.Invoker, tool, colorizer string) *Orchestrator {
	return &Orchestrator{
		Invoker:   invoker,
		Tool:      tool,
		Colorizer: colorizer,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		runTool:   execTool,
		lookPath:  exec.LookPath,
		log:       logger.NewEnvLogger("[diff]"),
	}
}

// Run performs the full compare. Errors carry their category, which the
// CLI maps onto the distinct exit statuses; a clean run returns nil when
// the files match and an ExitError(1) when they differ.
func (o *Orchestrator) Run(ctx context.Context, req Request) error {
	localPath, err := resolveLocal(req.LocalPath)
	if err != nil {
		return err
	}

	tgt := target.Parse(req.RawTarget)
	if tgt.Host == "" {
		return errors.New(errors.ErrUsage,
			"No remote host given",
			"Usage: overssh diff [flags] <local-file> [user@]host[:remote-path]")
	}
	if tgt.Path == "" {
		// Same path on the remote side as locally.
		tgt.Path = localPath
	}

	opts, err := transport.ParseArgs(req.TransportArgs)
	if err != nil {
		return err
	}

	remotePath := util.ShellQuotePreserveTilde(tgt.Path)

	// Pre-flight: a cheap existence test so a missing file fails precisely
	// before the content transfer.
	res := o.Invoker.Invoke(ctx, tgt, opts, "test -e "+remotePath)
	switch res.Outcome {
	case transport.OutcomeUnreachable:
		return errors.WrapWithCode(res.Err, errors.ErrConnect,
			fmt.Sprintf("Can't connect to '%s'", tgt.Host),
			"Check the host is up and reachable: ssh "+tgt.Addr())
	case transport.OutcomeDenied:
		return errors.New(errors.ErrRemote,
			fmt.Sprintf("Remote file not found: %s:%s", tgt.Host, tgt.Path),
			"Check the remote path, or your access to it. The host itself is reachable.")
	}

	res = o.Invoker.Invoke(ctx, tgt, opts, "cat "+remotePath)
	switch res.Outcome {
	case transport.OutcomeUnreachable:
		return errors.WrapWithCode(res.Err, errors.ErrConnect,
			fmt.Sprintf("Lost connection to '%s'", tgt.Host),
			"The host answered the pre-flight check but dropped the transfer. Try again.")
	case transport.OutcomeDenied:
		return errors.New(errors.ErrRemote,
			fmt.Sprintf("Can't read %s:%s", tgt.Host, tgt.Path),
			string(res.Stderr))
	}

	return o.runDiff(ctx, req.PayloadArgs, localPath, res.Output)
}

// resolveLocal turns the local argument into an absolute, existing path.
// Fails before any network activity.
func resolveLocal(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrUsage,
			"No local file given",
			"Usage: overssh diff [flags] <local-file> [user@]host[:remote-path]")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrUsage,
			"Can't resolve local path: "+path,
			"Check the path is valid.")
	}

	if _, err := os.Stat(abs); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrUsage,
			"Local file not found: "+abs,
			"Check the path exists and is readable.")
	}

	return abs, nil
}

// runDiff executes the diff tool with the remote content on stdin and the
// payload flags in their original order. The final exit status is the
// tool's own: 0 identical, 1 differences, anything higher is a tool error.
func (o *Orchestrator) runDiff(ctx context.Context, payloadArgs []string, localPath string, remote []byte) error {
	args := append(append([]string{}, payloadArgs...), localPath, "-")

	out := o.Stdout
	var capture *bytes.Buffer
	colorizer := o.colorizerPath()
	if colorizer != "" {
		capture = &bytes.Buffer{}
		out = capture
	}

	code, err := o.runTool(ctx, o.Tool, args, bytes.NewReader(remote), out, o.Stderr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDiff,
			fmt.Sprintf("Can't run '%s'", o.Tool),
			"Check the tool is installed and on your PATH.")
	}

	if capture != nil {
		o.colorize(ctx, colorizer, capture)
	}

	if code != 0 {
		return errors.NewExitError(code)
	}
	return nil
}

// colorizerPath returns the resolved colorizer binary, or "" when color
// is off or the tool isn't installed.
func (o *Orchestrator) colorizerPath() string {
	if !o.Colorize || o.Colorizer == "" {
		return ""
	}
	path, err := o.lookPath(o.Colorizer)
	if err != nil {
		o.log.Debug("colorizer %s not found, plain output", o.Colorizer)
		return ""
	}
	return path
}

// colorize pipes captured diff output through the colorizer, falling back
// to the raw listing if the colorizer misbehaves.
func (o *Orchestrator) colorize(ctx context.Context, colorizer string, captured *bytes.Buffer) {
	raw := captured.Bytes()
	if _, err := o.runTool(ctx, colorizer, nil, bytes.NewReader(raw), o.Stdout, o.Stderr); err != nil {
		o.log.Debug("colorizer failed (%v), emitting raw diff", err)
		o.Stdout.Write(raw) //nolint:errcheck
	}
}

// execTool is the production runTool: it executes an external command and
// extracts its exit status.
func execTool(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
