// Package announce advertises a hostname with an arbitrary IPv4
// address over mDNS on the local segment. The advertisement is
// registered as a _workstation._tcp service instance through
// hashicorp/mdns, bound to one interface, and stays up until Close
// unregisters it and releases the responder.
package announce

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/miekg/dns"

	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/netinfo"
)

const (
	// DefaultHostname is advertised when no name is chosen.
	DefaultHostname = "testdevice"
	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local"
	// DefaultServiceType is the advertised service type.
	DefaultServiceType = "_workstation._tcp"
	// DefaultPort is a placeholder service port; the advertisement
	// carries no reachable service.
	DefaultPort = 9
	// VerifyTimeout bounds a post-registration lookback query.
	VerifyTimeout = 3 * time.Second
)

// Errors
var (
	// ErrInvalidIP is returned when the address to announce is not an
	// IPv4 dotted quad.
	ErrInvalidIP = errors.New("invalid IPv4 address")
	// ErrNotStarted is returned by Verify before Start succeeded.
	ErrNotStarted = errors.New("announcer not started")
	// ErrNoAnswer is returned when verification saw no mDNS answer.
	ErrNoAnswer = errors.New("no mDNS answer for announced name")
)

// Announcer advertises one hostname/address pair.
type Announcer struct {
	// Hostname to announce, without domain. Empty means DefaultHostname.
	Hostname string
	// Domain, without trailing dot. Empty means DefaultDomain.
	Domain string
	// IP is the IPv4 address to announce, in dotted-quad form. It need
	// not belong to this machine.
	IP string
	// Interface names the adapter the responder binds to.
	Interface string
	// Port advertised with the service record. Zero means DefaultPort.
	Port int
	// TXT records. Nil means a single description entry.
	TXT []string
	// Debugf receives debug messages. Nil disables debug logging.
	Debugf func(format string, args ...interface{})

	server *mdns.Server
}

// New creates an announcer for hostname/ip bound to iface.
func New(hostname, ip, iface string) *Announcer {
	return &Announcer{Hostname: hostname, IP: ip, Interface: iface}
}

func (a *Announcer) debugLog(format string, args ...interface{}) {
	if a.Debugf != nil {
		a.Debugf(format, args...)
	}
}

func (a *Announcer) hostname() string {
	if a.Hostname == "" {
		return DefaultHostname
	}
	return a.Hostname
}

func (a *Announcer) domain() string {
	if a.Domain == "" {
		return DefaultDomain
	}
	return strings.TrimSuffix(a.Domain, ".")
}

// FQDN returns the fully qualified announced name, with trailing dot.
func (a *Announcer) FQDN() string {
	return a.hostname() + "." + a.domain() + "."
}

// Start validates the configuration and registers the advertisement.
// The responder keeps answering in the background until Close.
func (a *Announcer) Start() error {
	ip := net.ParseIP(a.IP)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("%w: %q", ErrInvalidIP, a.IP)
	}

	// The interface must carry an IPv4 address for the responder to
	// join the multicast group on it.
	info, err := netinfo.Lookup(a.Interface)
	if err != nil {
		return fmt.Errorf("bind interface: %w", err)
	}
	iface, err := net.InterfaceByName(a.Interface)
	if err != nil {
		return fmt.Errorf("bind interface: %w", err)
	}
	a.debugLog("binding to %s (%s), announcing %s as %s", a.Interface, info.IP, a.IP, a.FQDN())

	port := a.Port
	if port <= 0 {
		port = DefaultPort
	}
	txt := a.TXT
	if txt == nil {
		txt = []string{"description=Custom IP device"}
	}

	service, err := mdns.NewMDNSService(
		a.hostname(),
		DefaultServiceType,
		a.domain()+".",
		a.FQDN(),
		port,
		[]net.IP{ip.To4()},
		txt,
	)
	if err != nil {
		return fmt.Errorf("build service record: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service, Iface: iface})
	if err != nil {
		return fmt.Errorf("register advertisement: %w", err)
	}
	a.server = server
	a.debugLog("registered %s at %s", a.FQDN(), a.IP)
	return nil
}

// Close unregisters the advertisement and releases the responder.
// Safe to call more than once and before Start.
func (a *Announcer) Close() error {
	if a.server == nil {
		return nil
	}
	a.debugLog("unregistering %s", a.FQDN())
	err := a.server.Shutdown()
	a.server = nil
	if err != nil {
		return fmt.Errorf("unregister advertisement: %w", err)
	}
	return nil
}

// Verify queries the local segment for the announced name and returns
// the address the responder answered with. It confirms the
// advertisement is actually visible on the wire.
func (a *Announcer) Verify(ctx context.Context) (net.IP, error) {
	if a.server == nil {
		return nil, ErrNotStarted
	}

	iface, err := net.InterfaceByName(a.Interface)
	if err != nil {
		return nil, fmt.Errorf("bind interface: %w", err)
	}

	group := &net.UDPAddr{IP: net.IPv4(224, 0, 0, 251), Port: 5353}
	conn, err := net.ListenMulticastUDP("udp4", iface, group)
	if err != nil {
		return nil, fmt.Errorf("join mDNS group: %w", err)
	}
	defer conn.Close()

	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(a.FQDN()), dns.TypeA)
	q.RecursionDesired = false
	packed, err := q.Pack()
	if err != nil {
		return nil, fmt.Errorf("pack query: %w", err)
	}
	if _, err := conn.WriteToUDP(packed, group); err != nil {
		return nil, fmt.Errorf("send query: %w", err)
	}

	deadline := time.Now().Add(VerifyTimeout)
	buf := make([]byte, 65536)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		m := new(dns.Msg)
		if err := m.Unpack(buf[:n]); err != nil {
			continue
		}
		if ip := findAnswer(m, a.FQDN()); ip != nil {
			a.debugLog("verified %s -> %s", a.FQDN(), ip)
			return ip, nil
		}
	}
	return nil, ErrNoAnswer
}

// findAnswer extracts the A record for fqdn from a response.
func findAnswer(m *dns.Msg, fqdn string) net.IP {
	for _, rr := range append(m.Answer, m.Extra...) {
		if a, ok := rr.(*dns.A); ok && strings.EqualFold(a.Hdr.Name, fqdn) {
			return a.A
		}
	}
	return nil
}
