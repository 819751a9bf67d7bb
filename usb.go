package maple

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// dfuPollInterval is how often WaitForDFU rescans the USB bus
const dfuPollInterval = 50 * time.Millisecond

// MapleDevice is a Maple board found on the USB bus. Port is set only while
// the board runs a sketch and exposes a serial device; a board in its
// bootloader has no tty.
type MapleDevice struct {
	BusID        string // sysfs device name, e.g. 1-1.4
	ProductID    string
	SerialNumber string
	Manufacturer string
	Product      string
	Port         string
}

// Mode returns "serial", "DFU" or "" for an unknown product id
func (d *MapleDevice) Mode() string {
	return mapleMode(d.ProductID)
}

// DFU reports whether the board is sitting in its bootloader
func (d *MapleDevice) DFU() bool {
	return d.Mode() == "DFU"
}

func mapleMode(productID string) string {
	switch strings.ToLower(productID) {
	case MapleSerialProduct:
		return "serial"
	case MapleDFUProduct:
		return "DFU"
	default:
		return ""
	}
}

// FindMaples scans the USB bus for boards with the Maple vendor id, in
// either serial or DFU mode, sorted by bus id
func FindMaples() ([]*MapleDevice, error) {
	busDir := filepath.Join(sysfsRoot, "bus", "usb", "devices")
	entries, err := os.ReadDir(busDir)
	if err != nil {
		return nil, err
	}

	var maples []*MapleDevice
	for _, entry := range entries {
		// Interfaces (1-1.4:1.0) carry no device ids
		if strings.Contains(entry.Name(), ":") {
			continue
		}

		devPath := filepath.Join(busDir, entry.Name())
		if !strings.EqualFold(readSysfsFile(filepath.Join(devPath, "idVendor")), MapleVendorID) {
			continue
		}

		maples = append(maples, &MapleDevice{
			BusID:        entry.Name(),
			ProductID:    readSysfsFile(filepath.Join(devPath, "idProduct")),
			SerialNumber: readSysfsFile(filepath.Join(devPath, "serial")),
			Manufacturer: readSysfsFile(filepath.Join(devPath, "manufacturer")),
			Product:      readSysfsFile(filepath.Join(devPath, "product")),
			Port:         findTTY(devPath),
		})
	}

	sort.Slice(maples, func(i, j int) bool { return maples[i].BusID < maples[j].BusID })
	return maples, nil
}

// findTTY returns the /dev path of the first tty under a USB device, or ""
func findTTY(devPath string) string {
	patterns := []string{
		filepath.Join(devPath, "*:*", "tty", "tty*"), // cdc_acm
		filepath.Join(devPath, "*:*", "ttyUSB*"),     // usb-serial
	}
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		if len(matches) > 0 {
			sort.Strings(matches)
			return filepath.Join(devDir, filepath.Base(matches[0]))
		}
	}
	return ""
}

// WaitForDFU polls the USB bus until a Maple bootloader appears or timeout
// elapses. It only confirms a reset took effect; nothing is resent.
func WaitForDFU(timeout time.Duration) (*MapleDevice, error) {
	deadline := time.Now().Add(timeout)
	for {
		maples, err := FindMaples()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for _, m := range maples {
			if m.DFU() {
				return m, nil
			}
		}

		if !time.Now().Before(deadline) {
			return nil, ErrDFUTimeout
		}
		time.Sleep(dfuPollInterval)
	}
}
