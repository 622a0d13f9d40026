package client

import (
	"context"
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

// dial resolves host names through the injected lookuper
// and tries every returned address in order.
func (c *Client) dial(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, errors.Wrap(err, "splitting dial address")
	}

	if _, err := netip.ParseAddr(host); err == nil {
		return c.dialer.DialContext(ctx, network, address)
	}

	addrs, err := c.lookuper.LookupIP(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}

	var firstErr error
	for _, addr := range addrs {
		conn, err := c.dialer.DialContext(ctx, network, net.JoinHostPort(addr.String(), port))
		if err == nil {
			return conn, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}

	return nil, firstErr
}
