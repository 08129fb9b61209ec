package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/overssh/overssh/internal/config"
	"github.com/overssh/overssh/internal/diff"
	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/flagsplit"
	"github.com/overssh/overssh/internal/transport"
	"github.com/overssh/overssh/internal/ui"
)

// diffCmd compares a local file with its counterpart on a remote host.
// Flag parsing is disabled: the raw argument vector flows through the
// partitioner, which pulls out transport flags (-4 -6 -p -F -l -o) from
// anywhere in the vector and passes everything else to the diff tool
// verbatim, in order.
var diffCmd = &cobra.Command{
	Use:   "diff [diff-flags] <local-file> [user@]host[:remote-path]",
	Short: "Compare a local file with its copy on a remote host",
	Long: `Fetch a file from a remote host and compare it with a local one
using the external diff tool. Unrecognized flags pass through to diff
unchanged, so anything diff understands works here too.

When the remote path is omitted, the remote side is assumed to hold the
file at the same absolute path as the local one.

Exit status: 0 identical, 1 differences found, 3 remote file missing,
4 host unreachable.

Examples:
  overssh diff /etc/nginx/nginx.conf web1
  overssh diff -u deploy.sh alice@mini:/opt/deploy.sh
  overssh diff -u --ignore-all-space -p 2222 config.yaml mini`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return diffCommand(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func diffCommand(cmd *cobra.Command, args []string) error {
	// DisableFlagParsing means help never triggers on its own.
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return cmd.Help()
		}
	}

	if len(args) < 2 {
		return errors.New(errors.ErrUsage,
			"Need a local file and a remote target",
			"Usage: overssh diff [diff-flags] <local-file> [user@]host[:remote-path]")
	}

	// The last two tokens are positional by contract; everything before
	// them is fair game for the partitioner.
	localPath := args[len(args)-2]
	rawTarget := args[len(args)-1]
	transportArgs, payloadArgs := flagsplit.Partition(args[:len(args)-2])

	defaults, err := config.Load("")
	if err != nil {
		return err
	}

	o := diff.New(transport.NewInvoker(), defaults.Diff.Tool, defaults.Diff.Colorizer)
	o.Colorize = !noColorFlag && ui.DetectColor(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return o.Run(ctx, diff.Request{
		LocalPath:     localPath,
		RawTarget:     rawTarget,
		TransportArgs: transportArgs,
		PayloadArgs:   payloadArgs,
	})
}
