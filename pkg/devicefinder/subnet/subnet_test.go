// Package subnet tests for target derivation.
package subnet

import (
	"net"
	"testing"
)

func TestHosts(t *testing.T) {
	tests := []struct {
		name     string
		ip       net.IP
		mask     net.IPMask
		expected int
		first    string
		last     string
	}{
		{"slash24", net.IPv4(192, 168, 1, 10), net.IPv4Mask(255, 255, 255, 0), 254, "192.168.1.1", "192.168.1.254"},
		{"slash30", net.IPv4(10, 0, 0, 5), net.IPv4Mask(255, 255, 255, 252), 1, "10.0.0.5", "10.0.0.5"},
		{"slash29", net.IPv4(10, 0, 0, 1), net.IPv4Mask(255, 255, 255, 248), 6, "10.0.0.1", "10.0.0.6"},
		{"slash16", net.IPv4(172, 16, 4, 9), net.IPv4Mask(255, 255, 0, 0), 65534, "172.16.0.1", "172.16.255.254"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hosts, err := Hosts(tt.ip, tt.mask)
			if err != nil {
				t.Fatalf("Hosts() failed: %v", err)
			}
			if len(hosts) != tt.expected {
				t.Fatalf("Hosts() returned %d addresses, expected %d", len(hosts), tt.expected)
			}
			if got := hosts[0].String(); got != tt.first {
				t.Errorf("first host = %s, want %s", got, tt.first)
			}
			if got := hosts[len(hosts)-1].String(); got != tt.last {
				t.Errorf("last host = %s, want %s", got, tt.last)
			}
		})
	}
}

func TestHosts_ExcludesNetworkAndBroadcast(t *testing.T) {
	hosts, err := Hosts(net.IPv4(192, 168, 1, 10), net.IPv4Mask(255, 255, 255, 0))
	if err != nil {
		t.Fatalf("Hosts() failed: %v", err)
	}
	for _, h := range hosts {
		s := h.String()
		if s == "192.168.1.0" || s == "192.168.1.255" {
			t.Errorf("Hosts() included %s", s)
		}
	}
}

func TestHosts_Ascending(t *testing.T) {
	hosts, err := Hosts(net.IPv4(10, 1, 0, 1), net.IPv4Mask(255, 255, 254, 0))
	if err != nil {
		t.Fatalf("Hosts() failed: %v", err)
	}
	for i := 1; i < len(hosts); i++ {
		if IPToUint32(hosts[i-1]) >= IPToUint32(hosts[i]) {
			t.Fatalf("hosts not strictly ascending at index %d: %s >= %s", i, hosts[i-1], hosts[i])
		}
	}
}

func TestHosts_Invalid(t *testing.T) {
	tests := []struct {
		name string
		ip   net.IP
		mask net.IPMask
	}{
		{"ipv6 address", net.ParseIP("fe80::1"), net.IPv4Mask(255, 255, 255, 0)},
		{"ipv6 mask", net.IPv4(192, 168, 1, 1), net.CIDRMask(64, 128)},
		{"nil address", nil, net.IPv4Mask(255, 255, 255, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Hosts(tt.ip, tt.mask); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNetwork(t *testing.T) {
	network, broadcast, err := Network(net.IPv4(10, 0, 0, 5), net.IPv4Mask(255, 255, 255, 252))
	if err != nil {
		t.Fatalf("Network() failed: %v", err)
	}
	if network.String() != "10.0.0.4" {
		t.Errorf("network = %s, want 10.0.0.4", network)
	}
	if broadcast.String() != "10.0.0.7" {
		t.Errorf("broadcast = %s, want 10.0.0.7", broadcast)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	ip := net.IPv4(192, 168, 200, 45)
	if got := Uint32ToIP(IPToUint32(ip)); !got.Equal(ip) {
		t.Errorf("round trip = %s, want %s", got, ip)
	}
}
