package maple

import "golang.org/x/sys/unix"

// tty is the set of terminal syscalls a Session is built on
type tty interface {
	Open(path string) (int, error)
	GetTermios(fd int) (*unix.Termios, error)
	SetTermios(fd int, termios *unix.Termios) error
	Flush(fd int) error
	GetModem(fd int) (int, error)
	SetModem(fd int, status int) error
	Write(fd int, data []byte) (int, error)
	Close(fd int) error
}

// unixTTY talks to the kernel through the unix package
type unixTTY struct{}

var _ tty = unixTTY{}

func (unixTTY) Open(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
}

func (unixTTY) GetTermios(fd int) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, unix.TCGETS)
}

// SetTermios applies the settings immediately (TCSANOW)
func (unixTTY) SetTermios(fd int, termios *unix.Termios) error {
	return unix.IoctlSetTermios(fd, unix.TCSETS, termios)
}

// Flush discards both pending input and unsent output
func (unixTTY) Flush(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH)
}

func (unixTTY) GetModem(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCMGET)
}

// SetModem replaces the whole modem status word; TIOCMSET takes a pointer
func (unixTTY) SetModem(fd int, status int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCMSET, status)
}

func (unixTTY) Write(fd int, data []byte) (int, error) {
	return unix.Write(fd, data)
}

func (unixTTY) Close(fd int) error {
	return unix.Close(fd)
}
