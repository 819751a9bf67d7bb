package maple

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mkUSBDevice lays out a USB device the way the kernel does:
//
//	devices/usb1/<busID>            attributes
//	bus/usb/devices/<busID>      -> devices/usb1/<busID>
//
// and returns the device directory.
func mkUSBDevice(t *testing.T, root, busID string, attrs map[string]string) string {
	t.Helper()

	devPath := filepath.Join(root, "devices", "usb1", busID)
	busDir := filepath.Join(root, "bus", "usb", "devices")
	require.NoError(t, os.MkdirAll(devPath, 0o755))
	require.NoError(t, os.MkdirAll(busDir, 0o755))
	writeAttrs(t, devPath, attrs)
	require.NoError(t, os.Symlink(devPath, filepath.Join(busDir, busID)))
	return devPath
}

func TestFindMaplesDFUOnly(t *testing.T) {
	root := t.TempDir()
	mkUSBDevice(t, root, "1-1.4", map[string]string{
		"idVendor":     "1eaf",
		"idProduct":    "0003",
		"manufacturer": "LeafLabs",
		"product":      "Maple 003",
	})
	// A bootloader board has no tty, so /dev holds nothing for it
	dev := t.TempDir()
	withRoots(t, dev, root)

	ports, err := ListPorts()
	require.NoError(t, err)
	require.Empty(t, ports)

	maples, err := FindMaples()
	require.NoError(t, err)
	require.Len(t, maples, 1)

	m := maples[0]
	require.Equal(t, "1-1.4", m.BusID)
	require.Equal(t, "Maple 003", m.Product)
	require.Equal(t, "DFU", m.Mode())
	require.True(t, m.DFU())
	require.Empty(t, m.Port)
}

func TestFindMaplesSerialAndDFU(t *testing.T) {
	root := t.TempDir()
	serial := mkUSBDevice(t, root, "1-1.4", map[string]string{
		"idVendor":  "1eaf",
		"idProduct": "0004",
		"serial":    "ABC123",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(serial, "1-1.4:1.0", "tty", "ttyACM0"), 0o755))
	mkUSBDevice(t, root, "1-1.2", map[string]string{
		"idVendor":  "1EAF",
		"idProduct": "0003",
	})
	mkUSBDevice(t, root, "2-1", map[string]string{
		"idVendor":  "0403",
		"idProduct": "6001",
	})
	// Interface entries sit next to devices and carry no ids
	iface := filepath.Join(root, "bus", "usb", "devices", "1-1.4:1.0")
	require.NoError(t, os.Symlink(filepath.Join(serial, "1-1.4:1.0"), iface))
	withRoots(t, "/dev", root)

	maples, err := FindMaples()
	require.NoError(t, err)
	require.Len(t, maples, 2)

	require.Equal(t, "1-1.2", maples[0].BusID)
	require.True(t, maples[0].DFU())
	require.Empty(t, maples[0].Port)

	require.Equal(t, "1-1.4", maples[1].BusID)
	require.Equal(t, "serial", maples[1].Mode())
	require.Equal(t, "ABC123", maples[1].SerialNumber)
	require.Equal(t, "/dev/ttyACM0", maples[1].Port)
}

func TestFindMaplesUSBSerialPort(t *testing.T) {
	root := t.TempDir()
	devPath := mkUSBDevice(t, root, "5-2", map[string]string{
		"idVendor":  "1eaf",
		"idProduct": "0004",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(devPath, "5-2:1.0", "ttyUSB3"), 0o755))
	withRoots(t, "/dev", root)

	maples, err := FindMaples()
	require.NoError(t, err)
	require.Len(t, maples, 1)
	require.Equal(t, "/dev/ttyUSB3", maples[0].Port)
}

func TestFindMaplesNoUSBBus(t *testing.T) {
	withRoots(t, "/dev", t.TempDir())

	_, err := FindMaples()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapleDeviceMode(t *testing.T) {
	tests := []struct {
		product string
		mode    string
		dfu     bool
	}{
		{"0004", "serial", false},
		{"0003", "DFU", true},
		{"0042", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		m := &MapleDevice{ProductID: tt.product}
		require.Equal(t, tt.mode, m.Mode(), tt.product)
		require.Equal(t, tt.dfu, m.DFU(), tt.product)
	}
}

func TestWaitForDFUAlreadyPresent(t *testing.T) {
	root := t.TempDir()
	mkUSBDevice(t, root, "1-1.4", map[string]string{
		"idVendor":  "1eaf",
		"idProduct": "0003",
	})
	withRoots(t, "/dev", root)

	start := time.Now()
	m, err := WaitForDFU(time.Second)
	require.NoError(t, err)
	require.Equal(t, "1-1.4", m.BusID)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitForDFUTimeout(t *testing.T) {
	root := t.TempDir()
	mkUSBDevice(t, root, "1-1.4", map[string]string{
		"idVendor":  "1eaf",
		"idProduct": "0004",
	})
	withRoots(t, "/dev", root)

	start := time.Now()
	_, err := WaitForDFU(120 * time.Millisecond)
	require.ErrorIs(t, err, ErrDFUTimeout)
	require.Equal(t, ExitNoDFU, ExitCode(err))
	require.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
}

func TestWaitForDFUMissingBus(t *testing.T) {
	withRoots(t, "/dev", t.TempDir())

	_, err := WaitForDFU(60 * time.Millisecond)
	require.ErrorIs(t, err, ErrDFUTimeout)
}

// The board drops off the bus after a reset and comes back in its bootloader
func TestWaitForDFUAppearsLater(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bus", "usb", "devices"), 0o755))
	withRoots(t, "/dev", root)

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(100 * time.Millisecond)
		devPath := filepath.Join(root, "devices", "usb1", "1-1.4")
		if err := os.MkdirAll(devPath, 0o755); err != nil {
			return
		}
		os.WriteFile(filepath.Join(devPath, "idVendor"), []byte("1eaf\n"), 0o644)
		os.WriteFile(filepath.Join(devPath, "idProduct"), []byte("0003\n"), 0o644)
		os.Symlink(devPath, filepath.Join(root, "bus", "usb", "devices", "1-1.4"))
	}()

	m, err := WaitForDFU(2 * time.Second)
	<-done
	require.NoError(t, err)
	require.True(t, m.DFU())
}
