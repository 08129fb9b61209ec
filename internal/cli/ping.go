package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/overssh/overssh/internal/config"
	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/probe"
	"github.com/overssh/overssh/internal/target"
	"github.com/overssh/overssh/internal/transport"
	"github.com/overssh/overssh/internal/ui"
)

// pingCmd probes a host with repeated authenticated round-trips.
var pingCmd = &cobra.Command{
	Use:   "ping [options] [user@]host",
	Short: "Probe a host with authenticated SSH round-trips",
	Long: `Send repeated authenticated round-trips to a host and report what
came back. Each probe is a full connection, authentication, and a trivial
remote command, so a reply proves the whole path works.

Replies are classified, never conflated:
  reply           the round-trip completed
  access denied   the host is up, but authentication or the remote
                  command was rejected (still counts as received)
  no reply        no connection could be established (counts as lost)

Interrupt an unbounded run with Ctrl-C to get the summary.

Examples:
  overssh ping mini
  overssh ping -c 5 -i 2 alice@mini
  overssh ping -c 10 -q -W 3 mini`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pingCommand(cmd, args)
	},
}

// addPingFlags registers the probe flag surface. Split out so tests can
// build the same flag set on a throwaway command.
func addPingFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("count", "c", 0, "stop after this many probes (0 = unbounded)")
	cmd.Flags().Float64P("interval", "i", 1, "seconds between probes")
	cmd.Flags().Float64P("timeout", "W", 10, "per-probe timeout in seconds")
	cmd.Flags().StringP("login", "l", "", "remote username")
	cmd.Flags().BoolP("ipv4", "4", false, "use IPv4 only")
	cmd.Flags().BoolP("ipv6", "6", false, "use IPv6 only")
	cmd.Flags().StringP("ssh-config", "F", "", "alternate ssh_config file")
	cmd.Flags().BoolP("verbose", "v", false, "echo resolved transport settings before probing")
	cmd.Flags().BoolP("quiet", "q", false, "suppress per-probe lines, keep the summary")
	cmd.Flags().BoolP("timestamps", "D", false, "prefix each probe line with wall-clock time")
	cmd.MarkFlagsMutuallyExclusive("ipv4", "ipv6")
}

func init() {
	addPingFlags(pingCmd)
	rootCmd.AddCommand(pingCmd)
}

func pingCommand(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New(errors.ErrUsage,
			"Which host should I ping?",
			"Usage: overssh ping [options] [user@]host")
	}

	tgt := parsePingTarget(args[0])
	if tgt.Host == "" {
		return errors.New(errors.ErrUsage,
			"No host to ping",
			"Usage: overssh ping [options] [user@]host")
	}

	defaults, err := config.Load("")
	if err != nil {
		return err
	}

	cfg, opts, err := buildPingConfig(cmd.Flags(), tgt, defaults)
	if err != nil {
		return err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		writePingPreamble(cmd.ErrOrStderr(), tgt, opts)
	}

	renderer := ui.NewProbeRenderer(os.Stdout, tgt.Host)
	renderer.Quiet, _ = cmd.Flags().GetBool("quiet")
	renderer.Timestamps, _ = cmd.Flags().GetBool("timestamps")
	if noColorFlag {
		renderer.Color = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := probe.New(transport.NewInvoker(), cfg, renderer).Run(ctx)
	if err != nil {
		return err
	}

	// Mirror ping's convention: success means at least one reply came back.
	if report == nil || report.Received == 0 {
		return errors.NewExitError(1)
	}
	return nil
}

// writePingPreamble echoes the resolved transport settings before the
// loop starts, in ssh -G style.
func writePingPreamble(w io.Writer, tgt target.Target, opts transport.Options) {
	fmt.Fprint(w, transport.Resolve(tgt, opts).Describe())
}

// parsePingTarget parses a ping argument. Ping has no path concept, so a
// colon in the host part (an IPv6 literal, a stray scp-style suffix) is
// folded back into the host rather than split off.
func parsePingTarget(raw string) target.Target {
	tgt := target.Parse(raw)
	if tgt.Path != "" {
		tgt.Host = tgt.Host + ":" + tgt.Path
		tgt.Path = ""
	}
	return tgt
}

// buildPingConfig merges explicit flags over the defaults file. Flags the
// user didn't touch fall back to the config file's values.
func buildPingConfig(flags *pflag.FlagSet, tgt target.Target, defaults *config.Config) (probe.Config, transport.Options, error) {
	count := defaults.Ping.Count
	if flags.Changed("count") {
		count, _ = flags.GetInt("count")
	}

	interval := defaults.Ping.Interval
	if flags.Changed("interval") {
		secs, _ := flags.GetFloat64("interval")
		if secs < 0 {
			return probe.Config{}, transport.Options{}, errors.New(errors.ErrUsage,
				"Probe interval can't be negative",
				"Use -i with a non-negative number of seconds.")
		}
		interval = time.Duration(secs * float64(time.Second))
	}

	timeout := defaults.Ping.Timeout
	if flags.Changed("timeout") {
		secs, _ := flags.GetFloat64("timeout")
		if secs < 0 {
			return probe.Config{}, transport.Options{}, errors.New(errors.ErrUsage,
				"Probe timeout can't be negative",
				"Use -W with a non-negative number of seconds.")
		}
		timeout = time.Duration(secs * float64(time.Second))
	}

	user, _ := flags.GetString("login")
	sshConfig, _ := flags.GetString("ssh-config")

	opts := transport.Options{
		User:       user,
		ConfigFile: sshConfig,
		Timeout:    timeout,
	}
	if ipv4, _ := flags.GetBool("ipv4"); ipv4 {
		opts.Network = "tcp4"
	}
	if ipv6, _ := flags.GetBool("ipv6"); ipv6 {
		opts.Network = "tcp6"
	}

	cfg := probe.Config{
		Target:   tgt,
		Options:  opts,
		Count:    count,
		Interval: interval,
	}
	return cfg, opts, nil
}
