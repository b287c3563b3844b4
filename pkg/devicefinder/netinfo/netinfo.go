// Package netinfo resolves a local network interface to its IPv4
// address and netmask. The result is a read-only snapshot of the OS
// configuration at call time; nothing is cached between calls.
package netinfo

import (
	"errors"
	"fmt"
	"net"
)

// Errors
var (
	// ErrNoIPv4 is returned when the interface exists but carries no
	// IPv4 address.
	ErrNoIPv4 = errors.New("interface has no IPv4 address")
)

// Info describes the IPv4 configuration of a network interface.
type Info struct {
	Name string
	IP   net.IP
	Mask net.IPMask
}

// CIDR returns the interface network in CIDR notation (e.g. "192.168.1.0/24").
func (i Info) CIDR() string {
	ones, _ := i.Mask.Size()
	network := i.IP.Mask(i.Mask)
	return fmt.Sprintf("%s/%d", network, ones)
}

// Lookup returns the first IPv4 address and netmask configured on the
// named interface.
func Lookup(name string) (Info, error) {
	if name == "" {
		return Info{}, errors.New("empty interface name")
	}

	iface, err := net.InterfaceByName(name)
	if err != nil {
		return Info{}, fmt.Errorf("interface %s: %w", name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return Info{}, fmt.Errorf("addresses of %s: %w", name, err)
	}

	ipnet := firstIPv4(addrs)
	if ipnet == nil {
		return Info{}, fmt.Errorf("interface %s: %w", name, ErrNoIPv4)
	}

	return Info{
		Name: name,
		IP:   ipnet.IP.To4(),
		Mask: ipnet.Mask,
	}, nil
}

// firstIPv4 returns the first IPv4 network among the given addresses,
// or nil if there is none.
func firstIPv4(addrs []net.Addr) *net.IPNet {
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			return ipnet
		}
	}
	return nil
}
