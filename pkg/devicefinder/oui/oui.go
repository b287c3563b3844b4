// Package oui resolves the vendor (manufacturer) behind a hardware
// address using the IEEE OUI registry embedded in klauspost/oui. Used
// to annotate scan reports; an unknown vendor is simply blank.
package oui

import (
	"fmt"
	"sync"

	klauspost "github.com/klauspost/oui"

	"github.com/marcuoli/go-devicefinder/pkg/devicefinder/neighbor"
)

var (
	db     klauspost.OuiDB
	dbOnce sync.Once
	dbErr  error
)

// initDB loads the embedded registry once, lazily.
func initDB() error {
	dbOnce.Do(func() {
		d, err := klauspost.OpenStaticFile("")
		if err != nil {
			dbErr = fmt.Errorf("load embedded OUI database: %w", err)
			return
		}
		db = d
	})
	return dbErr
}

// Lookup returns the manufacturer registered for the address prefix.
// An address absent from the registry returns ("", nil); a malformed
// address is an error.
func Lookup(mac string) (string, error) {
	canonical, err := neighbor.NormalizeMAC(mac)
	if err != nil {
		return "", err
	}
	if err := initDB(); err != nil {
		return "", err
	}

	entry, err := db.Query(canonical)
	if err != nil {
		if err == klauspost.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("OUI lookup: %w", err)
	}
	return entry.Manufacturer, nil
}

// LookupName is Lookup with all failures collapsed to the empty
// string, for callers that only decorate output.
func LookupName(mac string) string {
	name, err := Lookup(mac)
	if err != nil {
		return ""
	}
	return name
}
