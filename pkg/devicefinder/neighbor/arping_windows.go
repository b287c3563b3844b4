//go:build windows

package neighbor

import "time"

// DefaultArpingTimeout bounds an active ARP probe.
const DefaultArpingTimeout = 1 * time.Second

// ArpingResolver is a stub on Windows, where active ARP probing is not
// supported by the current implementation. Resolve always misses, so a
// chained passive reader still works.
type ArpingResolver struct {
	Timeout time.Duration
}

// Resolve always returns not found on Windows.
func (a ArpingResolver) Resolve(ip, iface string) (string, bool) {
	return "", false
}

// ArpingSupported reports whether active ARP probing is available on
// this platform.
func ArpingSupported() bool {
	return false
}
