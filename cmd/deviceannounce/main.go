// Command deviceannounce advertises an arbitrary IPv4 address under a
// chosen hostname via mDNS on the local segment. It runs until
// interrupted; on SIGINT/SIGTERM it unregisters the advertisement and
// releases the responder before exiting.
//
// Usage:
//
//	deviceannounce --ip 192.168.1.100 [--name testdevice] [--interface wlan0]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/announce"
)

func main() {
	var (
		name    string
		ip      string
		iface   string
		port    int
		txt     string
		verify  bool
		verbose bool
	)

	flag.StringVar(&name, "name", announce.DefaultHostname, "Hostname to announce")
	flag.StringVar(&ip, "ip", "", "IP address to announce (e.g. 192.168.1.100)")
	flag.StringVar(&iface, "interface", "wlan0", "Network interface to bind to")
	flag.IntVar(&port, "port", announce.DefaultPort, "Service port to advertise")
	flag.StringVar(&txt, "txt", "", "Additional TXT record (key=value)")
	flag.BoolVar(&verify, "verify", false, "Query the announced name once after registering")
	flag.BoolVar(&verbose, "v", false, "Verbose debug output on stderr")
	flag.Parse()

	if ip == "" {
		fmt.Fprintln(os.Stderr, "error: -ip is required")
		flag.Usage()
		os.Exit(2)
	}

	a := announce.New(name, ip, iface)
	a.Port = port
	if txt != "" {
		a.TXT = []string{"description=Custom IP device", txt}
	}
	if verbose {
		logger := log.New(os.Stderr, "[deviceannounce] ", log.Ltime)
		a.Debugf = logger.Printf
	}

	if err := a.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "announce error: %v\n", err)
		return
	}

	fmt.Printf("Announcing %s as %s. Press Ctrl+C to stop...\n", ip, a.FQDN())

	if verify {
		ctx, cancel := context.WithTimeout(context.Background(), announce.VerifyTimeout)
		if answered, err := a.Verify(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		} else {
			fmt.Printf("Verified: %s answers with %s\n", a.FQDN(), answered)
		}
		cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	// Ordered cleanup: unregister the advertisement, then release the
	// responder, before the process exits.
	fmt.Println("\nUnregistering hostname...")
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "cleanup: %v\n", err)
	}
	fmt.Println("Hostname announcement stopped")
}
