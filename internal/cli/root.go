// Package cli defines the overssh command tree.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/transport"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo stores the build metadata shown by 'overssh --version'.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

var noColorFlag bool

var rootCmd = &cobra.Command{
	Use:   "overssh",
	Short: "Probe and compare remote hosts over SSH",
	Long: `overssh is a small family of utilities for hosts reachable over SSH.

  overssh ping   sends repeated authenticated round-trips to a host,
                 telling "host down" apart from "host up, access denied"
  overssh diff   compares a local file with its copy on a remote host

Both read optional defaults from ~/.config/overssh/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// Execute runs the command tree and exits the process with the status the
// failing component chose: usage errors exit 1, connectivity failures 4,
// missing remote files 3, and the diff tool's own status passes through.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", buildVersion, buildCommit, buildDate)

	err := rootCmd.Execute()
	transport.CloseAgent()
	if err == nil {
		return
	}

	// ExitErrors carry a status but no message of their own ("files
	// differ" is not an error worth printing).
	var exitErr *errors.ExitError
	if !stderrors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(errors.StatusOf(err))
}
