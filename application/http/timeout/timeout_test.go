package timeout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	testcases := []struct {
		desc     string
		spec     Spec
		phase    Phase
		expected time.Duration
		bounded  bool
	}{
		{
			desc:    "unbounded",
			spec:    Spec{},
			phase:   Connect,
			bounded: false,
		},
		{
			desc:     "generic fallback connect",
			spec:     Spec{Generic: time.Second},
			phase:    Connect,
			expected: time.Second,
			bounded:  true,
		},
		{
			desc:     "generic fallback socket",
			spec:     Spec{Generic: time.Second, Connect: time.Millisecond},
			phase:    Socket,
			expected: time.Second,
			bounded:  true,
		},
		{
			desc:     "connect wins over generic",
			spec:     Spec{Generic: time.Millisecond, Connect: time.Hour},
			phase:    Connect,
			expected: time.Hour,
			bounded:  true,
		},
		{
			desc:     "socket wins over generic",
			spec:     Spec{Generic: time.Hour, Socket: time.Millisecond},
			phase:    Socket,
			expected: time.Millisecond,
			bounded:  true,
		},
		{
			desc:    "negative is absent",
			spec:    Spec{Generic: -1, Socket: -1},
			phase:   Socket,
			bounded: false,
		},
		{
			desc:    "other phase ignored",
			spec:    Spec{Socket: time.Second},
			phase:   Connect,
			bounded: false,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			d, ok := tc.spec.Resolve(tc.phase)
			assert.Equal(t, tc.bounded, ok)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestOverride(t *testing.T) {
	base := Spec{Generic: time.Second, Connect: time.Minute}
	got := base.Override(Spec{Connect: time.Millisecond, Socket: time.Hour})
	assert.Equal(t, Spec{Generic: time.Second, Connect: time.Millisecond, Socket: time.Hour}, got)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "connect", Connect.String())
	assert.Equal(t, "socket", Socket.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
