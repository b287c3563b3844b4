// Package neighbor tests for MAC normalization and table lookup.
package neighbor

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"aa:bb:cc:dd:ee:ff", "aa:bb:cc:dd:ee:ff", false},
		{"AA-BB-CC-DD-EE-FF", "aa:bb:cc:dd:ee:ff", false},
		{"aabb.ccdd.eeff", "aa:bb:cc:dd:ee:ff", false},
		{"AABBCCDDEEFF", "aa:bb:cc:dd:ee:ff", false},
		{"00:11:22:33:44:55", "00:11:22:33:44:55", false},

		{"", "", true},
		{"aa:bb:cc:dd:ee", "", true},          // 10 digits
		{"aa:bb:cc:dd:ee:ff:00", "", true},    // 14 digits
		{"gg:bb:cc:dd:ee:ff", "", true},       // non-hex
		{"aa:bb:cc:dd:ee:f", "", true},        // 11 digits
		{"hello world", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeMAC(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeMAC(%q) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidMAC) {
					t.Errorf("error = %v, want ErrInvalidMAC", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeMAC(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("NormalizeMAC(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeMAC_Idempotent(t *testing.T) {
	canonical, err := NormalizeMAC("AA-BB-CC-DD-EE-FF")
	if err != nil {
		t.Fatalf("NormalizeMAC failed: %v", err)
	}
	again, err := NormalizeMAC(canonical)
	if err != nil {
		t.Fatalf("NormalizeMAC(canonical) failed: %v", err)
	}
	if again != canonical {
		t.Errorf("NormalizeMAC not idempotent: %q != %q", again, canonical)
	}
}

const procARPSample = `IP address       HW type     Flags       HW address            Mask     Device
192.168.1.1      0x1         0x2         a4:2b:b0:c1:d2:e3     *        wlan0
192.168.1.50     0x1         0x0         00:00:00:00:00:00     *        wlan0
192.168.1.77     0x1         0x2         DE:AD:BE:EF:00:77     *        eth0
`

func writeProcSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arp")
	if err := os.WriteFile(path, []byte(procARPSample), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcReader(t *testing.T) {
	r := ProcReader{Path: writeProcSample(t)}

	tests := []struct {
		name  string
		ip    string
		iface string
		mac   string
		found bool
	}{
		{"entry on interface", "192.168.1.1", "wlan0", "a4:2b:b0:c1:d2:e3", true},
		{"any interface", "192.168.1.1", "", "a4:2b:b0:c1:d2:e3", true},
		{"wrong interface", "192.168.1.1", "eth0", "", false},
		{"incomplete entry skipped", "192.168.1.50", "wlan0", "", false},
		{"case normalized", "192.168.1.77", "eth0", "de:ad:be:ef:00:77", true},
		{"unknown address", "192.168.1.200", "wlan0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mac, ok := r.Resolve(tt.ip, tt.iface)
			if ok != tt.found {
				t.Fatalf("Resolve(%s, %s) ok = %v, want %v", tt.ip, tt.iface, ok, tt.found)
			}
			if mac != tt.mac {
				t.Errorf("Resolve(%s, %s) = %q, want %q", tt.ip, tt.iface, mac, tt.mac)
			}
		})
	}
}

func TestProcReader_MissingTable(t *testing.T) {
	r := ProcReader{Path: filepath.Join(t.TempDir(), "nope")}
	if _, ok := r.Resolve("192.168.1.1", ""); ok {
		t.Error("Expected not found for unreadable table")
	}
}

func TestParseNeighborOutput(t *testing.T) {
	darwinOut := `? (192.168.1.1) at a4:2b:b0:c1:d2:e3 on en0 ifscope [ethernet]
? (192.168.1.10) at de:ad:be:ef:0:10 on en0 ifscope [ethernet]
? (192.168.1.101) at aa:bb:cc:dd:ee:01 on en0 ifscope [ethernet]
`
	windowsOut := `Interface: 192.168.1.5 --- 0xb
  Internet Address      Physical Address      Type
  192.168.1.1           a4-2b-b0-c1-d2-e3     dynamic
  192.168.1.255         ff-ff-ff-ff-ff-ff     static
`

	tests := []struct {
		name  string
		ip    string
		out   string
		mac   string
		found bool
	}{
		{"darwin format", "192.168.1.1", darwinOut, "a4:2b:b0:c1:d2:e3", true},
		{"windows dashes", "192.168.1.1", windowsOut, "a4:2b:b0:c1:d2:e3", true},
		{"no prefix match", "192.168.1.10", darwinOut, "de:ad:be:ef:0:", false}, // short octet form never matches
		{"full octets only", "192.168.1.101", darwinOut, "aa:bb:cc:dd:ee:01", true},
		{"absent", "192.168.1.99", darwinOut, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mac, ok := parseNeighborOutput(tt.ip, tt.out)
			if ok != tt.found {
				t.Fatalf("parseNeighborOutput(%s) ok = %v, want %v", tt.ip, ok, tt.found)
			}
			if ok && mac != tt.mac {
				t.Errorf("parseNeighborOutput(%s) = %q, want %q", tt.ip, mac, tt.mac)
			}
		})
	}
}

func TestCommandReader_Failure(t *testing.T) {
	r := CommandReader{Output: func() ([]byte, error) { return nil, errors.New("no arp binary") }}
	if _, ok := r.Resolve("192.168.1.1", ""); ok {
		t.Error("Expected not found when the command fails")
	}
}

// fakeReader serves a fixed ip → mac map and counts lookups.
type fakeReader struct {
	table map[string]string
	calls int
}

func (f *fakeReader) Resolve(ip, _ string) (string, bool) {
	f.calls++
	mac, ok := f.table[ip]
	return mac, ok
}

func ips(ss ...string) []net.IP {
	out := make([]net.IP, len(ss))
	for i, s := range ss {
		out[i] = net.ParseIP(s)
	}
	return out
}

func TestFindByMAC(t *testing.T) {
	live := ips("192.168.1.1", "192.168.1.2", "192.168.1.3", "192.168.1.4")
	table := map[string]string{
		"192.168.1.1": "aa:aa:aa:aa:aa:01",
		"192.168.1.2": "aa:aa:aa:aa:aa:02",
		"192.168.1.4": "aa:aa:aa:aa:aa:04",
	}

	t.Run("match is member and unique", func(t *testing.T) {
		r := &fakeReader{table: table}
		ip, found, err := FindByMAC(live, "AA-AA-AA-AA-AA-02", "wlan0", r)
		if err != nil {
			t.Fatalf("FindByMAC failed: %v", err)
		}
		if !found || ip.String() != "192.168.1.2" {
			t.Errorf("FindByMAC = %v/%v, want 192.168.1.2/true", ip, found)
		}
	})

	t.Run("short circuits in order", func(t *testing.T) {
		r := &fakeReader{table: table}
		_, found, err := FindByMAC(live, "aa:aa:aa:aa:aa:01", "wlan0", r)
		if err != nil || !found {
			t.Fatalf("FindByMAC = %v, %v", found, err)
		}
		if r.calls != 1 {
			t.Errorf("resolved %d addresses, want 1 (short circuit)", r.calls)
		}
	})

	t.Run("no match", func(t *testing.T) {
		r := &fakeReader{table: table}
		ip, found, err := FindByMAC(live, "ff:ff:ff:ff:ff:ff", "wlan0", r)
		if err != nil {
			t.Fatalf("FindByMAC failed: %v", err)
		}
		if found || ip != nil {
			t.Errorf("FindByMAC = %v/%v, want nil/false", ip, found)
		}
	})

	t.Run("invalid target", func(t *testing.T) {
		r := &fakeReader{table: table}
		_, _, err := FindByMAC(live, "not-a-mac", "wlan0", r)
		if !errors.Is(err, ErrInvalidMAC) {
			t.Errorf("error = %v, want ErrInvalidMAC", err)
		}
		if r.calls != 0 {
			t.Errorf("resolved %d addresses before validation, want 0", r.calls)
		}
	})
}

func TestChain(t *testing.T) {
	miss := &fakeReader{table: map[string]string{}}
	hit := &fakeReader{table: map[string]string{"10.0.0.1": "aa:bb:cc:dd:ee:ff"}}

	mac, ok := Chain(miss, hit).Resolve("10.0.0.1", "")
	if !ok || mac != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("Chain Resolve = %q/%v, want aa:bb:cc:dd:ee:ff/true", mac, ok)
	}
	if miss.calls != 1 || hit.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", miss.calls, hit.calls)
	}

	if _, ok := Chain(miss).Resolve("10.0.0.9", ""); ok {
		t.Error("Expected miss from chain of misses")
	}
}
