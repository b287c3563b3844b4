// Package report formats scan results for the CLI: either bare
// addresses (quiet mode, one per line, nothing else) or a
// human-readable listing with hardware address and vendor annotations.
package report

import (
	"fmt"
	"io"
	"net"
)

// Row is one live host in the human-readable listing.
type Row struct {
	IP     string
	MAC    string // canonical form, empty when unresolved
	Vendor string // manufacturer name, empty when unknown
}

// WriteQuiet prints one bare address per line, nothing else.
func WriteQuiet(w io.Writer, ips []net.IP) {
	for _, ip := range ips {
		fmt.Fprintln(w, ip.String())
	}
}

// WriteScan prints the host listing for a full scan.
func WriteScan(w io.Writer, iface string, rows []Row) {
	fmt.Fprintf(w, "\nFound %d active devices on %s:\n", len(rows), iface)
	for _, r := range rows {
		switch {
		case r.MAC != "" && r.Vendor != "":
			fmt.Fprintf(w, " - %s  %s  (%s)\n", r.IP, r.MAC, r.Vendor)
		case r.MAC != "":
			fmt.Fprintf(w, " - %s  %s\n", r.IP, r.MAC)
		default:
			fmt.Fprintf(w, " - %s\n", r.IP)
		}
	}
}

// WriteMatch prints the outcome of a MAC-filtered scan.
func WriteMatch(w io.Writer, mac, iface string, ip net.IP) {
	if ip != nil {
		fmt.Fprintf(w, "\nDevice found with MAC %s: %s\n", mac, ip)
		return
	}
	fmt.Fprintf(w, "\nNo device found with MAC %s on interface %s\n", mac, iface)
}
