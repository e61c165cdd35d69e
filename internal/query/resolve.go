package query

import (
	"context"
	"fmt"
	"net"
)

// Resolver looks up IPv4 addresses for host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Resolve returns host as a dotted-quad IPv4 string. Literal IPv4 addresses
// are returned unchanged; anything else is looked up with r, or with
// net.DefaultResolver when r is nil.
func Resolve(ctx context.Context, r Resolver, host string) (string, error) {
	if host == "" {
		return DefaultAddress, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}

		return "", fmt.Errorf("%w: %s is not an IPv4 address", ErrResolve, host)
	}

	if r == nil {
		r = net.DefaultResolver
	}

	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResolve, host, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s has no IPv4 address", ErrResolve, host)
}
