package domain

import (
	"context"
	"maps"
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

type Lookuper interface {
	LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error)
}

// NetLookuper resolves through a [net.Resolver].
type NetLookuper struct {
	Resolver *net.Resolver
}

var _ Lookuper = NetLookuper{}

func (n NetLookuper) LookupIP(ctx context.Context, domain string) ([]netip.Addr, error) {
	r := n.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	// Resolver errors (*net.DNSError) are returned as they are.
	return r.LookupNetIP(ctx, "ip", domain)
}

type mapLookuper struct {
	set map[string][]netip.Addr
}

var _ Lookuper = (*mapLookuper)(nil)

// NewMapLookuper resolves from a fixed table.
// Unknown names fail like a real resolver would.
func NewMapLookuper(set map[string][]netip.Addr) *mapLookuper {
	if set == nil {
		set = make(map[string][]netip.Addr)
	}
	return &mapLookuper{set: maps.Clone(set)}
}

func (m *mapLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	addrs, ok := m.set[domain]
	if !ok {
		return nil, &net.DNSError{
			Err:        "no such host",
			Name:       domain,
			IsNotFound: true,
			UnwrapErr:  ErrDomainNotFound,
		}
	}
	return addrs, nil
}

func (m *mapLookuper) Set(domain string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}
	m.set[domain] = addrs
}

func (m *mapLookuper) Del(domain string) { delete(m.set, domain) }
