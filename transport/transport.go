package transport

import (
	"context"
	"net"
	"strconv"
)

type Protocol string

const (
	TCP Protocol = "tcp"
)

// ListenFunc binds the listener a server accepts calls from.
type ListenFunc func(ctx context.Context, addr string) (net.Listener, error)

// Listen binds a TCP listener.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, string(TCP), addr)
}

var _ ListenFunc = Listen

// PortAddr turns a port into a listen address on all interfaces.
// Port 0 asks the system for an ephemeral port.
func PortAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}

// Port reports the TCP port of addr, or 0 if it has none.
func Port(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0
	}
	p, _ := strconv.Atoi(port)
	return p
}
