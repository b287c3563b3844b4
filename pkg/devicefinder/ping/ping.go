// Package ping provides ICMP liveness probing through the operating
// system's ping command. A probe sends exactly one echo request with a
// short timeout; any failure (spawn error, timeout, non-zero exit) is a
// negative result, never a fatal error. Sweep probes a whole target set
// through a bounded worker pool.
package ping

import (
	"context"
	"net"
	"os/exec"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/subnet"
)

const (
	// DefaultTimeout is the per-probe timeout.
	DefaultTimeout = 1 * time.Second
	// DefaultWorkers caps the number of in-flight probes.
	DefaultWorkers = 100
)

// Prober probes hosts for liveness.
type Prober struct {
	// Timeout per probe. Zero means DefaultTimeout.
	Timeout time.Duration
	// Workers caps concurrent probes during a Sweep. Zero means DefaultWorkers.
	Workers int
	// ProbeFunc overrides the probe mechanism. Nil means the OS ping command.
	ProbeFunc func(ctx context.Context, ip net.IP) bool
	// Debugf receives debug messages. Nil disables debug logging.
	Debugf func(format string, args ...interface{})
}

// NewProber creates a prober with defaults.
func NewProber() *Prober {
	return &Prober{Timeout: DefaultTimeout, Workers: DefaultWorkers}
}

func (p *Prober) debugLog(format string, args ...interface{}) {
	if p.Debugf != nil {
		p.Debugf(format, args...)
	}
}

// Probe reports whether the host answers a single ICMP echo request
// within the timeout.
func (p *Prober) Probe(ctx context.Context, ip net.IP) bool {
	if p.ProbeFunc != nil {
		return p.ProbeFunc(ctx, ip)
	}
	return p.pingProbe(ctx, ip)
}

func (p *Prober) pingProbe(ctx context.Context, ip net.IP) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// The command enforces its own timeout; the context deadline is a
	// backstop in case the ping binary misbehaves.
	ctx, cancel := context.WithTimeout(ctx, timeout+500*time.Millisecond)
	defer cancel()

	args := pingArgs(runtime.GOOS, ip.String())
	if err := exec.CommandContext(ctx, "ping", args...).Run(); err != nil {
		return false
	}
	return true
}

// pingArgs returns platform-specific arguments for one echo request
// with a ~1 second reply timeout.
func pingArgs(goos, addr string) []string {
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", "1000", addr}
	case "darwin":
		// -W is in milliseconds on macOS.
		return []string{"-c", "1", "-W", "1000", addr}
	default:
		return []string{"-c", "1", "-W", "1", addr}
	}
}

// Sweep probes all targets concurrently and returns the live subset,
// sorted ascending by numeric address. It blocks until every probe has
// completed; partial results are never returned.
func (p *Prober) Sweep(ctx context.Context, targets []net.IP) []net.IP {
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(targets) {
		workers = len(targets)
	}
	if len(targets) == 0 {
		return nil
	}

	p.debugLog("sweep start: %d targets, %d workers", len(targets), workers)

	jobs := make(chan net.IP, len(targets))
	results := make(chan net.IP, len(targets))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for ip := range jobs {
			if p.Probe(ctx, ip) {
				results <- ip
			}
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

	for _, ip := range targets {
		jobs <- ip
	}
	close(jobs)
	wg.Wait()
	close(results)

	var live []net.IP
	for ip := range results {
		live = append(live, ip)
	}
	sort.Slice(live, func(i, j int) bool {
		return subnet.IPToUint32(live[i]) < subnet.IPToUint32(live[j])
	})

	p.debugLog("sweep complete: %d/%d live", len(live), len(targets))
	return live
}
