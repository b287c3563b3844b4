// Package neighbor resolves IP addresses to hardware (MAC) addresses
// using the OS neighbor table, and correlates a set of live addresses
// to a requested hardware address.
//
// Two passive table readers are provided: a procfs reader for Linux
// (/proc/net/arp, interface-scoped) and a command reader for platforms
// that only expose the table through the arp command (global table,
// matched by address). The reader is selected once at startup via
// NewTableReader. An active arping-based resolver can be chained in
// front of or behind a passive reader.
package neighbor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// Errors
var (
	// ErrInvalidMAC is returned when a hardware address does not
	// normalize to exactly 6 octets.
	ErrInvalidMAC = errors.New("invalid MAC address format")
)

// zeroMAC is the placeholder the kernel uses for incomplete entries.
const zeroMAC = "00:00:00:00:00:00"

// procNetARP is the Linux neighbor table.
const procNetARP = "/proc/net/arp"

// TableReader resolves an IP address to a hardware address.
type TableReader interface {
	// Resolve returns the canonical hardware address learned for ip on
	// the named interface, or ok=false when no entry exists. Readers
	// that cannot scope by interface ignore iface. An unreadable table
	// is treated as "not found", never as an error.
	Resolve(ip, iface string) (mac string, ok bool)
}

// NewTableReader returns the neighbor table reader for the current
// platform: procfs on Linux, the arp command elsewhere.
func NewTableReader() TableReader {
	if runtime.GOOS == "linux" {
		return ProcReader{}
	}
	return CommandReader{}
}

// NormalizeMAC normalizes a hardware address to its canonical form:
// lowercase hex octets separated by colons. Separator style and case
// are ignored; anything that does not strip down to exactly 12 hex
// digits fails with ErrInvalidMAC. Normalization is idempotent.
func NormalizeMAC(s string) (string, error) {
	var hex []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
			hex = append(hex, c)
		case c >= 'A' && c <= 'F':
			hex = append(hex, c+('a'-'A'))
		case c == ':' || c == '-' || c == '.' || c == ' ':
			// separators
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidMAC, s)
		}
	}
	if len(hex) != 12 {
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}

	parts := make([]string, 6)
	for i := 0; i < 6; i++ {
		parts[i] = string(hex[i*2 : i*2+2])
	}
	return strings.Join(parts, ":"), nil
}

// ProcReader reads the Linux neighbor table from procfs.
type ProcReader struct {
	// Path overrides the table location. Empty means /proc/net/arp.
	Path string
}

// Resolve looks up ip in the procfs table, restricted to entries
// learned on iface when iface is non-empty. Incomplete entries
// (all-zero hardware address) are skipped.
func (r ProcReader) Resolve(ip, iface string) (string, bool) {
	path := r.Path
	if path == "" {
		path = procNetARP
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return "", false
	}
	for _, line := range lines[1:] { // skip header
		parts := strings.Fields(line)
		if len(parts) < 6 || parts[0] != ip {
			continue
		}
		if iface != "" && parts[5] != iface {
			continue
		}
		mac, err := NormalizeMAC(parts[3])
		if err != nil || mac == zeroMAC {
			continue
		}
		return mac, true
	}
	return "", false
}

// CommandReader queries the neighbor table through the arp command.
type CommandReader struct {
	// Output overrides the command invocation. Nil runs "arp -a".
	Output func() ([]byte, error)
}

// Resolve runs the arp report command and pattern-matches the line
// carrying ip. The interface argument is ignored: the command exposes a
// single global table. A failing or missing arp command is "not found".
func (r CommandReader) Resolve(ip, _ string) (string, bool) {
	output := r.Output
	if output == nil {
		output = func() ([]byte, error) {
			return exec.Command("arp", "-a").Output()
		}
	}

	out, err := output()
	if err != nil {
		return "", false
	}
	return parseNeighborOutput(ip, string(out))
}

// parseNeighborOutput extracts the hardware address paired with ip in
// an arp command report. Both colon- and dash-separated addresses are
// accepted (BSD/macOS versus Windows output).
func parseNeighborOutput(ip, out string) (string, bool) {
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(ip) + `\b.*?([0-9A-Fa-f]{2}(?:[:-][0-9A-Fa-f]{2}){5})`)
	m := pattern.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	mac, err := NormalizeMAC(m[1])
	if err != nil || mac == zeroMAC {
		return "", false
	}
	return mac, true
}

// Chain combines readers; Resolve returns the first hit.
func Chain(readers ...TableReader) TableReader {
	return chain(readers)
}

type chain []TableReader

func (c chain) Resolve(ip, iface string) (string, bool) {
	for _, r := range c {
		if mac, ok := r.Resolve(ip, iface); ok {
			return mac, ok
		}
	}
	return "", false
}

// FindByMAC returns the first live address whose resolved hardware
// address matches target, walking the addresses in the order given.
// Resolution short-circuits on the first match. A target that does not
// normalize fails with ErrInvalidMAC; no match is (nil, false, nil).
func FindByMAC(live []net.IP, target, iface string, r TableReader) (net.IP, bool, error) {
	want, err := NormalizeMAC(target)
	if err != nil {
		return nil, false, err
	}

	for _, ip := range live {
		mac, ok := r.Resolve(ip.String(), iface)
		if !ok {
			continue
		}
		if mac == want {
			return ip, true, nil
		}
	}
	return nil, false, nil
}
