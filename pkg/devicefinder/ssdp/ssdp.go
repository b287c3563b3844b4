// Package ssdp discovers devices that answer UPnP M-SEARCH on the
// local segment. Some devices suppress ICMP but still announce over
// SSDP, so the scanner can merge these responders into its live set.
// Wraps github.com/koron/go-ssdp.
package ssdp

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	gossdp "github.com/koron/go-ssdp"
)

// DefaultTimeout is the M-SEARCH response collection window.
const DefaultTimeout = 3 * time.Second

// Discovery performs SSDP-based device discovery.
type Discovery struct {
	// Timeout bounds the search. Zero means DefaultTimeout.
	Timeout time.Duration
	// Debugf receives debug messages. Nil disables debug logging.
	Debugf func(format string, args ...interface{})
}

// NewDiscovery creates an SSDP discovery helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout}
}

func (d *Discovery) debugLog(format string, args ...interface{}) {
	if d.Debugf != nil {
		d.Debugf(format, args...)
	}
}

// Addresses sends one multicast M-SEARCH for all devices and returns
// the deduplicated IPv4 addresses of the responders, extracted from
// each service's description URL.
func (d *Discovery) Addresses(ctx context.Context) ([]net.IP, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	waitSec := int(timeout.Seconds())
	if waitSec < 1 {
		waitSec = 1
	}

	type searchResult struct {
		services []gossdp.Service
		err      error
	}
	ch := make(chan searchResult, 1)
	go func() {
		services, err := gossdp.Search(gossdp.All, waitSec, "")
		ch <- searchResult{services, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("SSDP search: %w", res.err)
		}
		addrs := collectAddresses(res.services)
		d.debugLog("SSDP search found %d services, %d distinct addresses", len(res.services), len(addrs))
		return addrs, nil
	}
}

func collectAddresses(services []gossdp.Service) []net.IP {
	seen := make(map[string]bool)
	var addrs []net.IP
	for _, svc := range services {
		ip, ok := locationHost(svc.Location)
		if !ok || seen[ip.String()] {
			continue
		}
		seen[ip.String()] = true
		addrs = append(addrs, ip)
	}
	return addrs
}

// locationHost extracts the IPv4 host from a device description URL
// such as "http://192.168.1.20:49152/desc.xml".
func locationHost(location string) (net.IP, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, false
	}
	ip := net.ParseIP(u.Hostname())
	if ip == nil || ip.To4() == nil {
		return nil, false
	}
	return ip.To4(), true
}
