//go:build linux || darwin || freebsd || netbsd || openbsd

package neighbor

import (
	"net"
	"time"

	"github.com/j-keck/arping"
)

// DefaultArpingTimeout bounds an active ARP probe.
const DefaultArpingTimeout = 1 * time.Second

// ArpingResolver resolves hardware addresses by sending an ARP request
// instead of reading the passive table. Useful when the kernel has not
// talked to the host recently and the table entry is missing or stale.
// Sending raw ARP usually requires elevated privileges; a refused probe
// is "not found" like any other failure.
type ArpingResolver struct {
	// Timeout per probe. Zero means DefaultArpingTimeout.
	Timeout time.Duration
}

// Resolve sends an ARP request for ip over iface (or the routing
// default when iface is empty) and returns the canonical hardware
// address of the reply.
func (a ArpingResolver) Resolve(ip, iface string) (string, bool) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return "", false
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultArpingTimeout
	}
	arping.SetTimeout(timeout)

	var (
		hw  net.HardwareAddr
		err error
	)
	if iface != "" {
		hw, _, err = arping.PingOverIfaceByName(parsed, iface)
	} else {
		hw, _, err = arping.Ping(parsed)
	}
	if err != nil {
		return "", false
	}

	mac, err := NormalizeMAC(hw.String())
	if err != nil || mac == zeroMAC {
		return "", false
	}
	return mac, true
}

// ArpingSupported reports whether active ARP probing is available on
// this platform.
func ArpingSupported() bool {
	return true
}
