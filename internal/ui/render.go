// Package ui renders probe attempts and summaries as terminal lines.
// Color degrades to plain text automatically when stdout isn't an
// interactive terminal; the data itself always comes from the probe
// engine's report structs, so both renderings carry the same facts.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/overssh/overssh/internal/probe"
	"github.com/overssh/overssh/internal/transport"
)

// ProbeRenderer implements probe.Reporter by writing human-readable lines.
type ProbeRenderer struct {
	Out        io.Writer
	Host       string
	Quiet      bool // suppress per-attempt lines, keep the summary
	Timestamps bool // prefix attempt lines with wall-clock time
	Color      bool
}

// NewProbeRenderer builds a renderer for the given output, detecting
// color capability from the writer.
func NewProbeRenderer(out io.Writer, host string) *ProbeRenderer {
	return &ProbeRenderer{
		Out:   out,
		Host:  host,
		Color: DetectColor(out),
	}
}

// Attempt renders one per-probe line, unless quiet mode is on.
func (r *ProbeRenderer) Attempt(a probe.Attempt) {
	if r.Quiet {
		return
	}

	var prefix string
	if r.Timestamps {
		prefix = a.When.Format("[15:04:05] ")
		if r.Color {
			prefix = StyleMuted.Render(prefix)
		}
	}

	line := AttemptLine(a, r.Host)
	if r.Color {
		line = styleForAttempt(a).Render(line)
	}

	fmt.Fprintf(r.Out, "%s%s\n", prefix, line)
}

// Summary renders the final statistics block.
func (r *ProbeRenderer) Summary(rep probe.Report) {
	fmt.Fprintf(r.Out, "\n--- %s ping statistics ---\n", rep.Host)

	line := SummaryLine(rep)
	if r.Color {
		line = styleForSeverity(rep.Severity).Render(line)
	}
	fmt.Fprintln(r.Out, line)

	if rep.Received > 0 {
		fmt.Fprintf(r.Out, "rtt min/avg/max = %s/%s/%s\n",
			FormatRTT(rep.MinRTT), FormatRTT(rep.AvgRTT), FormatRTT(rep.MaxRTT))
	}
}

// AttemptLine formats one attempt as plain text. A full round-trip and a
// "reachable but denied" reply render differently on purpose: the second
// still proves the host is up.
func AttemptLine(a probe.Attempt, host string) string {
	switch a.Outcome {
	case transport.OutcomeSuccess:
		return fmt.Sprintf("%s reply from %s: seq=%d time=%s",
			SymbolSuccess, host, a.Seq, FormatRTT(a.Latency))
	case transport.OutcomeDenied:
		return fmt.Sprintf("%s reply from %s: seq=%d access denied time=%s",
			SymbolDenied, host, a.Seq, FormatRTT(a.Latency))
	default:
		return fmt.Sprintf("%s no reply from %s: seq=%d", SymbolFail, host, a.Seq)
	}
}

// SummaryLine formats the counters line of the final report.
func SummaryLine(rep probe.Report) string {
	return fmt.Sprintf("%d transmitted, %d received, %d%% loss, time %s",
		rep.Transmitted, rep.Received, rep.LossPercent, rep.Elapsed.Round(time.Millisecond))
}

// FormatRTT renders a latency with millisecond precision.
func FormatRTT(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return fmt.Sprintf("%.1fms", ms)
}

func styleForAttempt(a probe.Attempt) lipgloss.Style {
	switch a.Outcome {
	case transport.OutcomeSuccess:
		return StyleSuccess
	case transport.OutcomeDenied:
		return StyleWarning
	default:
		return StyleError
	}
}

func styleForSeverity(s probe.Severity) lipgloss.Style {
	switch s {
	case probe.SeverityOK:
		return StyleSuccess
	case probe.SeverityDegraded:
		return StyleWarning
	default:
		return StyleError
	}
}
