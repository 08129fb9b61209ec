// Package probe drives a timed loop of liveness round-trips against one
// host, classifying each response and keeping running statistics until
// the configured attempt count runs out or the run is cancelled.
package probe

import (
	"context"
	"time"

	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/logger"
	"github.com/overssh/overssh/internal/target"
	"github.com/overssh/overssh/internal/transport"
)

// EchoCommand is the trivial remote command each probe runs. Its only job
// is to complete a full authenticated round-trip.
const EchoCommand = "echo overssh-pong"

// Severity classifies a run's final loss percentage.
type Severity int

const (
	SeverityOK       Severity = iota // 0% loss
	SeverityDegraded                 // 1-99% loss
	SeverityDown                     // 100% loss
)

// Attempt describes one completed round-trip for per-line rendering.
type Attempt struct {
	Seq     int
	Outcome transport.Outcome
	Latency time.Duration
	When    time.Time
	Err     error
}

// Report is the final summary of a run. Exactly one is produced per run
// that transmitted at least one probe, whether the run ended by
// exhaustion or by cancellation.
type Report struct {
	Host        string
	Transmitted int
	Received    int
	Lost        int
	LossPercent int
	Severity    Severity
	MinRTT      time.Duration
	AvgRTT      time.Duration
	MaxRTT      time.Duration
	Elapsed     time.Duration
}

// Reporter receives rendering events from the engine. Keeping rendering
// behind this interface is what lets the same engine output colored
// terminal lines, plain text, or nothing at all in tests.
type Reporter interface {
	Attempt(a Attempt)
	Summary(r Report)
}

// Config holds a validated probe run configuration.
type Config struct {
	Target   target.Target
	Options  transport.Options
	Count    int           // attempts; 0 means unbounded
	Interval time.Duration // delay between attempts
}

// Validate checks the configuration before the run starts.
func (c *Config) Validate() error {
	if c.Target.Host == "" {
		return errors.New(errors.ErrUsage,
			"No host to probe",
			"Usage: overssh ping [options] [user@]host")
	}
	if c.Count < 0 {
		return errors.New(errors.ErrUsage,
			"Probe count can't be negative",
			"Use -c 0 for an unbounded run.")
	}
	if c.Interval < 0 {
		return errors.New(errors.ErrUsage,
			"Probe interval can't be negative",
			"Use -i with a non-negative number of seconds.")
	}
	return nil
}

// Engine runs the probe loop.
type Engine struct {
	invoker  transport.Invoker
	cfg      Config
	reporter Reporter
	log      logger.Logger
}

// New creates an engine. The reporter must not be nil; tests that don't
// care about output pass a discarding reporter.
func New(invoker transport.Invoker, cfg Config, reporter Reporter) *Engine {
	return &Engine{
		invoker:  invoker,
		cfg:      cfg,
		reporter: reporter,
		log:      logger.NewEnvLogger("[probe]"),
	}
}

// Run executes the loop until the attempt count is exhausted or ctx is
// cancelled. Cancellation is honored during the interval sleep, not just
// between iterations; an in-flight attempt always finishes naturally.
// The returned report is nil when no attempt completed (nothing to
// report), and both exit paths produce the summary through the same code.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	sess := NewSession()
	var rtts []time.Duration
	start := time.Now()

	for {
		if ctx.Err() != nil {
			// Cancelled while sleeping or before the first attempt.
			break
		}

		seq := sess.Seq
		attemptStart := time.Now()
		res := e.invoker.Invoke(ctx, e.cfg.Target, e.cfg.Options, EchoCommand)
		latency := time.Since(attemptStart)

		sess.Record(res.Outcome)
		if res.Outcome != transport.OutcomeUnreachable {
			rtts = append(rtts, latency)
		}
		if res.Err != nil {
			e.log.Debug("seq %d: %v", seq, res.Err)
		}

		e.reporter.Attempt(Attempt{
			Seq:     seq,
			Outcome: res.Outcome,
			Latency: latency,
			When:    attemptStart,
			Err:     res.Err,
		})

		if e.cfg.Count > 0 && sess.Transmitted >= e.cfg.Count {
			// Exhausted; no sleep after the final attempt.
			break
		}

		if !sleepOrCancel(ctx, e.cfg.Interval) {
			break
		}
	}

	if sess.Transmitted == 0 {
		return nil, nil
	}

	report := e.buildReport(sess, rtts, time.Since(start))
	e.reporter.Summary(report)
	return &report, nil
}

// sleepOrCancel waits for the interval unless the context is cancelled
// first. Returns false on cancellation so the caller can drain.
func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) buildReport(sess *Session, rtts []time.Duration, elapsed time.Duration) Report {
	r := Report{
		Host:        e.cfg.Target.Host,
		Transmitted: sess.Transmitted,
		Received:    sess.Received,
		Lost:        sess.Lost,
		LossPercent: sess.LossPercent(),
		Elapsed:     elapsed,
	}

	switch {
	case r.LossPercent == 0:
		r.Severity = SeverityOK
	case r.LossPercent == 100:
		r.Severity = SeverityDown
	default:
		r.Severity = SeverityDegraded
	}

	if len(rtts) > 0 {
		r.MinRTT = rtts[0]
		r.MaxRTT = rtts[0]
		var total time.Duration
		for _, rtt := range rtts {
			if rtt < r.MinRTT {
				r.MinRTT = rtt
			}
			if rtt > r.MaxRTT {
				r.MaxRTT = rtt
			}
			total += rtt
		}
		r.AvgRTT = total / time.Duration(len(rtts))
	}

	return r
}
