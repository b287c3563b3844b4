// Package devicefinder discovers live hosts on the local subnet of a
// named interface and optionally correlates them to a hardware (MAC)
// address. The pipeline: resolve the interface's IPv4 address and
// netmask, derive every usable host address in that subnet, probe each
// concurrently via ICMP, then either return the full sorted live set
// or the single host owning the requested hardware address.
//
// Subpackages hold the individual concerns (netinfo, subnet, ping,
// neighbor, ssdp, oui); this package wires them into the scan contract.
package devicefinder

import (
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/neighbor"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/netinfo"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/ping"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/ssdp"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/subnet"
)

const (
	// DefaultTimeout is the per-probe timeout.
	DefaultTimeout = 1 * time.Second
	// DefaultWorkers caps concurrent probes.
	DefaultWorkers = 100
)

// Result is the outcome of one scan. Nothing persists across scans.
type Result struct {
	// Interface the scan ran on.
	Interface string
	// Network is the scanned subnet in CIDR notation.
	Network string
	// Live holds every responding host, ascending by numeric address.
	Live []net.IP
	// Match is the single host owning the requested hardware address.
	// Nil unless a target MAC was set and a live host carried it.
	Match net.IP
}

// Scanner discovers live hosts on one interface's subnet.
type Scanner struct {
	// Interface names the adapter whose subnet is scanned.
	Interface string
	// TargetMAC, when non-empty, narrows the result to the one live
	// host carrying this hardware address. Any separator style and
	// case are accepted.
	TargetMAC string
	// Timeout per liveness probe. Zero means DefaultTimeout.
	Timeout time.Duration
	// Workers caps concurrent probes. Zero means DefaultWorkers.
	Workers int
	// UseSSDP merges UPnP responders inside the target range into the
	// live set, catching devices that suppress ICMP.
	UseSSDP bool
	// UseArping falls back to an active ARP probe when the passive
	// neighbor table has no entry for a live host.
	UseArping bool
	// Debugf receives debug messages. Nil disables debug logging.
	Debugf func(format string, args ...interface{})

	// Lookup overrides interface resolution. Nil means netinfo.Lookup.
	Lookup func(name string) (netinfo.Info, error)
	// Prober overrides the liveness prober. Nil builds one from
	// Timeout and Workers.
	Prober *ping.Prober
	// Neighbors overrides the hardware address source. Nil selects the
	// platform reader (plus arping when UseArping is set).
	Neighbors neighbor.TableReader
}

// NewScanner creates a scanner for the named interface with defaults.
func NewScanner(iface string) *Scanner {
	return &Scanner{
		Interface: iface,
		Timeout:   DefaultTimeout,
		Workers:   DefaultWorkers,
	}
}

func (s *Scanner) debugLog(format string, args ...interface{}) {
	if s.Debugf != nil {
		s.Debugf(format, args...)
	}
}

// Scan derives the target set, probes it, and returns the discovery
// result. Individual probe failures never abort the scan; only an
// unusable interface configuration or an invalid target MAC do.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = netinfo.Lookup
	}

	info, err := lookup(s.Interface)
	if err != nil {
		return nil, fmt.Errorf("resolve interface %s: %w", s.Interface, err)
	}
	s.debugLog("interface %s: %s mask %s", info.Name, info.IP, net.IP(info.Mask))

	targets, err := subnet.Hosts(info.IP, info.Mask)
	if err != nil {
		return nil, fmt.Errorf("derive targets for %s: %w", s.Interface, err)
	}
	s.debugLog("derived %d targets in %s", len(targets), info.CIDR())

	prober := s.Prober
	if prober == nil {
		prober = ping.NewProber()
		prober.Timeout = s.Timeout
		prober.Workers = s.Workers
		prober.Debugf = s.Debugf
	}

	live := prober.Sweep(ctx, targets)

	if s.UseSSDP {
		live = s.mergeSSDP(ctx, live, info)
	}

	res := &Result{
		Interface: s.Interface,
		Network:   info.CIDR(),
		Live:      live,
	}

	if s.TargetMAC == "" {
		return res, nil
	}

	match, found, err := neighbor.FindByMAC(live, s.TargetMAC, s.Interface, s.neighbors())
	if err != nil {
		return nil, err
	}
	if found {
		res.Match = match
	}
	return res, nil
}

// neighbors returns the configured hardware address source.
func (s *Scanner) neighbors() neighbor.TableReader {
	if s.Neighbors != nil {
		return s.Neighbors
	}
	table := neighbor.NewTableReader()
	if s.UseArping {
		return neighbor.Chain(table, neighbor.ArpingResolver{Timeout: s.Timeout})
	}
	return table
}

// ResolveMAC returns the canonical hardware address of a live host, if
// the neighbor table (or active probing) knows one. Used by report
// output.
func (s *Scanner) ResolveMAC(ip net.IP) (string, bool) {
	return s.neighbors().Resolve(ip.String(), s.Interface)
}

// mergeSSDP folds UPnP responders that fall inside the scanned subnet
// into the live set. Best effort: a failed search only logs.
func (s *Scanner) mergeSSDP(ctx context.Context, live []net.IP, info netinfo.Info) []net.IP {
	d := ssdp.NewDiscovery()
	d.Debugf = s.Debugf

	addrs, err := d.Addresses(ctx)
	if err != nil {
		s.debugLog("SSDP merge skipped: %v", err)
		return live
	}

	network, broadcast, err := subnet.Network(info.IP, info.Mask)
	if err != nil {
		return live
	}
	lo, hi := subnet.IPToUint32(network), subnet.IPToUint32(broadcast)

	seen := make(map[string]bool, len(live))
	for _, ip := range live {
		seen[ip.String()] = true
	}

	added := 0
	for _, ip := range addrs {
		u := subnet.IPToUint32(ip)
		if u <= lo || u >= hi || seen[ip.String()] {
			continue
		}
		seen[ip.String()] = true
		live = append(live, ip)
		added++
	}
	if added > 0 {
		sort.Slice(live, func(i, j int) bool {
			return subnet.IPToUint32(live[i]) < subnet.IPToUint32(live[j])
		})
		s.debugLog("SSDP merge added %d hosts", added)
	}
	return live
}
