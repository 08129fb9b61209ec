package probe

import "github.com/overssh/overssh/internal/transport"

// Session holds the running counters for one probe run. The invariant
// Transmitted == Received + Lost holds after every completed attempt:
// Success and Denied both count as received (the host answered, even if
// only to say no), Unreachable counts as lost.
type Session struct {
	Seq         int // next sequence number, starts at 1
	Transmitted int
	Received    int
	Lost        int
}

// NewSession returns a session ready for its first attempt.
func NewSession() *Session {
	return &Session{Seq: 1}
}

// Record tallies one completed attempt and advances the sequence number.
func (s *Session) Record(o transport.Outcome) {
	s.Transmitted++
	switch o {
	case transport.OutcomeSuccess, transport.OutcomeDenied:
		s.Received++
	default:
		s.Lost++
	}
	s.Seq++
}

// LossPercent returns the integer-truncated loss percentage.
// Zero transmitted means zero loss; the engine never reports in that case.
func (s *Session) LossPercent() int {
	if s.Transmitted == 0 {
		return 0
	}
	return 100 * s.Lost / s.Transmitted
}
