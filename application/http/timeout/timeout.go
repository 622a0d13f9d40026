package timeout

import "time"

type Phase uint8

const (
	// Connect spans DNS resolution through the first response byte.
	Connect Phase = iota
	// Socket spans reading the full response body.
	Socket
)

func (p Phase) String() string {
	switch p {
	case Connect:
		return "connect"
	case Socket:
		return "socket"
	}
	return "unknown"
}

// Spec holds per-phase timeouts. Non-positive values are treated as absent.
type Spec struct {
	Generic time.Duration
	Connect time.Duration
	Socket  time.Duration
}

// Resolve returns the timeout for phase.
// A phase specific value always wins over the generic one.
// ok is false when the phase is unbounded.
func (s Spec) Resolve(phase Phase) (d time.Duration, ok bool) {
	var specific time.Duration
	switch phase {
	case Connect:
		specific = s.Connect
	case Socket:
		specific = s.Socket
	}

	if specific > 0 {
		return specific, true
	}
	if s.Generic > 0 {
		return s.Generic, true
	}
	return 0, false
}

// Override returns s with every positive field of other applied on top.
func (s Spec) Override(other Spec) Spec {
	if other.Generic > 0 {
		s.Generic = other.Generic
	}
	if other.Connect > 0 {
		s.Connect = other.Connect
	}
	if other.Socket > 0 {
		s.Socket = other.Socket
	}
	return s
}
