// Command devicefind scans the subnet of a local interface for live
// hosts via ICMP and optionally narrows the result to the host owning
// a given MAC address.
//
// Usage:
//
//	devicefind [flags] <interface>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/marcuoli/go-devicefinder/internal/report"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/neighbor"
	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/oui"
)

func main() {
	var (
		mac       string
		quiet     bool
		useSSDP   bool
		useArping bool
		timeout   time.Duration
		workers   int
		verbose   bool
	)

	flag.StringVar(&mac, "mac", "", "MAC address to search for")
	flag.BoolVar(&quiet, "q", false, "Output only IP addresses")
	flag.BoolVar(&quiet, "quiet", false, "Output only IP addresses")
	flag.BoolVar(&useSSDP, "ssdp", false, "Also merge SSDP/UPnP responders into the live set")
	flag.BoolVar(&useArping, "arping", false, "Actively ARP-probe hosts missing from the neighbor table")
	flag.DurationVar(&timeout, "timeout", devicefinder.DefaultTimeout, "Per-probe timeout")
	flag.IntVar(&workers, "workers", devicefinder.DefaultWorkers, "Number of concurrent probes")
	flag.BoolVar(&verbose, "v", false, "Verbose debug output on stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <interface>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: interface name is required")
		flag.Usage()
		os.Exit(2)
	}
	iface := flag.Arg(0)

	var targetMAC string
	if mac != "" {
		normalized, err := neighbor.NormalizeMAC(mac)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Invalid MAC address format")
			os.Exit(2)
		}
		targetMAC = normalized
	}

	s := devicefinder.NewScanner(iface)
	s.TargetMAC = targetMAC
	s.Timeout = timeout
	s.Workers = workers
	s.UseSSDP = useSSDP
	s.UseArping = useArping
	if verbose {
		logger := log.New(os.Stderr, "[devicefind] ", log.Ltime)
		s.Debugf = logger.Printf
	}

	if targetMAC != "" && !quiet {
		fmt.Printf("Searching for MAC: %s\n", targetMAC)
	}

	res, err := s.Scan(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan error: %v\n", err)
		return
	}

	switch {
	case targetMAC != "" && quiet:
		if res.Match != nil {
			fmt.Println(res.Match)
		}
	case targetMAC != "":
		report.WriteMatch(os.Stdout, targetMAC, iface, res.Match)
	case quiet:
		report.WriteQuiet(os.Stdout, res.Live)
	default:
		rows := make([]report.Row, 0, len(res.Live))
		for _, ip := range res.Live {
			row := report.Row{IP: ip.String()}
			if hw, ok := s.ResolveMAC(ip); ok {
				row.MAC = hw
				row.Vendor = oui.LookupName(hw)
			}
			rows = append(rows, row)
		}
		report.WriteScan(os.Stdout, iface, rows)
	}
}
