// Package subnet derives the probe target set from an interface's
// IPv4 address and netmask: every host address strictly between the
// network and broadcast addresses, in ascending numeric order.
package subnet

import (
	"errors"
	"net"
)

// Errors
var (
	// ErrNotIPv4 is returned when the address or mask cannot be
	// interpreted as 4 octets.
	ErrNotIPv4 = errors.New("address or netmask is not IPv4")
)

// Hosts returns all usable host addresses in the subnet containing ip,
// excluding the network and broadcast addresses. The full host range is
// enumerated over the 32-bit address value, so the result is correct
// for any prefix length, not only those whose variable bits fall in the
// last octet.
func Hosts(ip net.IP, mask net.IPMask) ([]net.IP, error) {
	base := ip.To4()
	if base == nil {
		return nil, ErrNotIPv4
	}
	m := net.IP(mask).To4()
	if m == nil {
		return nil, ErrNotIPv4
	}

	network := IPToUint32(base) & IPToUint32(m)
	broadcast := network | ^IPToUint32(m)

	var hosts []net.IP
	for u := network + 1; u < broadcast; u++ {
		hosts = append(hosts, Uint32ToIP(u))
	}
	return hosts, nil
}

// Network returns the network and broadcast addresses of the subnet
// containing ip.
func Network(ip net.IP, mask net.IPMask) (network, broadcast net.IP, err error) {
	base := ip.To4()
	if base == nil {
		return nil, nil, ErrNotIPv4
	}
	m := net.IP(mask).To4()
	if m == nil {
		return nil, nil, ErrNotIPv4
	}
	n := IPToUint32(base) & IPToUint32(m)
	b := n | ^IPToUint32(m)
	return Uint32ToIP(n), Uint32ToIP(b), nil
}

// IPToUint32 converts an IPv4 address to its numeric value.
func IPToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

// Uint32ToIP converts a numeric value back to an IPv4 address.
func Uint32ToIP(u uint32) net.IP {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}
