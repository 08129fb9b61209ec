package transport

import (
	"errors"
	"testing"
)

func TestClassifyDialError_TCPFailureIsUnreachable(t *testing.T) {
	testCases := []string{
		"dial tcp: i/o timeout",
		"dial tcp: connection refused",
		"dial tcp: no route to host",
		"some completely novel dial failure",
	}

	for _, msg := range testCases {
		err := &dialError{addr: "mini:22", cause: errors.New(msg)}
		if got := classifyDialError(err); got != OutcomeUnreachable {
			t.Errorf("classifyDialError(dial %q) = %v, want unreachable", msg, got)
		}
	}
}

func TestClassifyDialError_HandshakeAuthIsDenied(t *testing.T) {
	testCases := []string{
		"ssh: unable to authenticate, attempted methods [none publickey]",
		"ssh: handshake failed: knownhosts: key mismatch",
		"ssh: no supported methods remain",
	}

	for _, msg := range testCases {
		err := &handshakeError{addr: "mini:22", cause: errors.New(msg)}
		if got := classifyDialError(err); got != OutcomeDenied {
			t.Errorf("classifyDialError(handshake %q) = %v, want denied", msg, got)
		}
	}
}

func TestClassifyDialError_HandshakeNetworkDeathIsUnreachable(t *testing.T) {
	testCases := []string{
		"read tcp: connection reset by peer",
		"ssh: handshake failed: EOF",
		"write tcp: broken pipe",
		"read tcp: i/o timeout",
	}

	for _, msg := range testCases {
		err := &handshakeError{addr: "mini:22", cause: errors.New(msg)}
		if got := classifyDialError(err); got != OutcomeUnreachable {
			t.Errorf("classifyDialError(handshake %q) = %v, want unreachable", msg, got)
		}
	}
}

func TestClassifyDialError_LocalSetupIsDenied(t *testing.T) {
	err := errors.New("no ssh auth methods available")
	if got := classifyDialError(err); got != OutcomeDenied {
		t.Errorf("classifyDialError(local setup) = %v, want denied", got)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeDenied, "denied"},
		{OutcomeUnreachable, "unreachable"},
		{Outcome(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}
