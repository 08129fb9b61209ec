package probe

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/target"
	"github.com/overssh/overssh/internal/transport"
	transporttest "github.com/overssh/overssh/internal/transport/testing"
)

// recordingReporter captures engine events and can trigger a callback
// after each attempt, which tests use to cancel mid-run.
type recordingReporter struct {
	mu        sync.Mutex
	attempts  []Attempt
	summaries []Report
	onAttempt func(Attempt)
}

func (r *recordingReporter) Attempt(a Attempt) {
	r.mu.Lock()
	r.attempts = append(r.attempts, a)
	cb := r.onAttempt
	r.mu.Unlock()
	if cb != nil {
		cb(a)
	}
}

func (r *recordingReporter) Summary(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, rep)
}

func newTestConfig(count int) Config {
	return Config{
		Target:   target.Target{Host: "mini"},
		Count:    count,
		Interval: 0,
	}
}

func TestEngine_AllSuccessBoundedRun(t *testing.T) {
	fake := transporttest.NewFakeInvoker(transporttest.Succeed("pong"))
	rep := &recordingReporter{}

	report, err := New(fake, newTestConfig(5), rep).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 5, report.Transmitted)
	assert.Equal(t, 5, report.Received)
	assert.Equal(t, 0, report.Lost)
	assert.Equal(t, 0, report.LossPercent)
	assert.Equal(t, SeverityOK, report.Severity)

	assert.Len(t, rep.attempts, 5)
	assert.Len(t, rep.summaries, 1, "exactly one summary per run")
	for i, a := range rep.attempts {
		assert.Equal(t, i+1, a.Seq, "sequence numbers are monotonic from 1")
	}
}

func TestEngine_AlternatingLossIsWarningClass(t *testing.T) {
	fake := transporttest.NewFakeInvoker(
		transporttest.Unreach(nil),
		transporttest.Succeed("pong"),
		transporttest.Unreach(nil),
		transporttest.Succeed("pong"),
	)
	rep := &recordingReporter{}

	report, err := New(fake, newTestConfig(4), rep).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 4, report.Transmitted)
	assert.Equal(t, 2, report.Received)
	assert.Equal(t, 2, report.Lost)
	assert.Equal(t, 50, report.LossPercent)
	assert.Equal(t, SeverityDegraded, report.Severity)
}

func TestEngine_DeniedCountsAsReceived(t *testing.T) {
	fake := transporttest.NewFakeInvoker(transporttest.Deny(1))
	rep := &recordingReporter{}

	report, err := New(fake, newTestConfig(3), rep).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Received, "denied replies are received, not lost")
	assert.Equal(t, 0, report.Lost)
	assert.Equal(t, SeverityOK, report.Severity)
}

func TestEngine_TotalLossIsDownClass(t *testing.T) {
	fake := transporttest.NewFakeInvoker(transporttest.Unreach(nil))
	rep := &recordingReporter{}

	report, err := New(fake, newTestConfig(3), rep).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, report.LossPercent)
	assert.Equal(t, SeverityDown, report.Severity)
}

func TestEngine_CancellationMidSleepProducesOneSummary(t *testing.T) {
	fake := transporttest.NewFakeInvoker(transporttest.Succeed("pong"))
	ctx, cancel := context.WithCancel(context.Background())

	rep := &recordingReporter{}
	rep.onAttempt = func(a Attempt) {
		if a.Seq == 2 {
			cancel()
		}
	}

	cfg := newTestConfig(0)  // unbounded
	cfg.Interval = time.Hour // cancellation must preempt this sleep

	done := make(chan struct{})
	var report *Report
	var err error
	go func() {
		report, err = New(fake, cfg, rep).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after cancellation; sleep was not preempted")
	}

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Transmitted, "counters reflect the last completed attempt")
	assert.Len(t, rep.summaries, 1, "cancellation routes through the same reporting path")
}

func TestEngine_CancelledBeforeFirstAttemptReportsNothing(t *testing.T) {
	fake := transporttest.NewFakeInvoker(transporttest.Succeed("pong"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &recordingReporter{}
	report, err := New(fake, newTestConfig(0), rep).Run(ctx)

	require.NoError(t, err)
	assert.Nil(t, report, "no data, no summary")
	assert.Empty(t, rep.summaries)
	assert.Zero(t, fake.CallCount())
}

func TestEngine_LatencyStatsOverReceivedReplies(t *testing.T) {
	fake := transporttest.NewFakeInvoker(
		transporttest.Succeed("pong"),
		transporttest.Unreach(nil),
		transporttest.Deny(1),
	)
	rep := &recordingReporter{}

	report, err := New(fake, newTestConfig(3), rep).Run(context.Background())
	require.NoError(t, err)

	// Two replies were received (success + denied); both contribute RTTs.
	assert.Greater(t, report.MaxRTT, time.Duration(0))
	assert.GreaterOrEqual(t, report.MaxRTT, report.AvgRTT)
	assert.GreaterOrEqual(t, report.AvgRTT, report.MinRTT)
}

func TestEngine_SendsEchoCommand(t *testing.T) {
	fake := transporttest.NewFakeInvoker(transporttest.Succeed("pong"))
	rep := &recordingReporter{}

	_, err := New(fake, newTestConfig(1), rep).Run(context.Background())
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, EchoCommand, calls[0].RemoteCmd)
	assert.Equal(t, "mini", calls[0].Target.Host)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid bounded", Config{Target: target.Target{Host: "h"}, Count: 5, Interval: time.Second}, false},
		{"valid unbounded", Config{Target: target.Target{Host: "h"}, Count: 0}, false},
		{"missing host", Config{Count: 5}, true},
		{"negative count", Config{Target: target.Target{Host: "h"}, Count: -1}, true},
		{"negative interval", Config{Target: target.Target{Host: "h"}, Interval: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, oerrors.IsCode(err, oerrors.ErrUsage))
				return
			}
			require.NoError(t, err)
		})
	}
}

// Engine must satisfy the invoker contract through the interface only.
var _ transport.Invoker = (*transporttest.FakeInvoker)(nil)
