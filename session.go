package maple

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}

// Session is an open serial device together with the terminal settings it
// had before Open touched it. Close puts those settings back and releases
// the descriptor; it does so once, whatever path the caller takes out.
//
// A Session is not safe for concurrent use.
type Session struct {
	sys    tty
	device string
	fd     int
	saved  *unix.Termios
	config Config
	log    *zap.Logger
	closed bool
}

// Open opens device read/write and switches it to raw mode with hardware
// flow control, after taking a snapshot of its current settings.
func Open(device string, opts ...Option) (*Session, error) {
	return open(unixTTY{}, device, opts...)
}

func open(sys tty, device string, opts ...Option) (*Session, error) {
	config, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	log := config.Logger.With(zap.String("device", device))

	fd, err := sys.Open(device)
	if err != nil {
		return nil, stageErr(StageOpen, device, err)
	}

	s := &Session{
		sys:    sys,
		device: device,
		fd:     fd,
		config: config,
		log:    log,
	}

	saved, err := sys.GetTermios(fd)
	if err != nil {
		return nil, multierr.Append(stageErr(StageGetAttr, device, err), s.Close())
	}
	s.saved = saved

	attr := *saved
	attr.Cflag |= unix.CRTSCTS | unix.CLOCAL
	attr.Oflag = 0

	if err := sys.Flush(fd); err != nil {
		return nil, multierr.Append(stageErr(StageFlush, device, err), s.Close())
	}
	if err := sys.SetTermios(fd, &attr); err != nil {
		return nil, multierr.Append(stageErr(StageSetAttr, device, err), s.Close())
	}

	log.Debug("opened", zap.Uint32("cflag", uint32(attr.Cflag)))
	return s, nil
}

// Device returns the path the session was opened with
func (s *Session) Device() string {
	return s.device
}

// SetRTS drives the RTS line high (true) or low (false)
func (s *Session) SetRTS(level bool) error {
	return s.setModemBit(unix.TIOCM_RTS, level)
}

// SetDTR drives the DTR line high (true) or low (false)
func (s *Session) SetDTR(level bool) error {
	return s.setModemBit(unix.TIOCM_DTR, level)
}

func (s *Session) setModemBit(bit int, level bool) error {
	if s.closed {
		return ErrSessionClosed
	}

	status, err := s.sys.GetModem(s.fd)
	if err != nil {
		return fmt.Errorf("TIOCMGET: %w", err)
	}
	if level {
		status |= bit
	} else {
		status &^= bit
	}
	if err := s.sys.SetModem(s.fd, status); err != nil {
		return fmt.Errorf("TIOCMSET: %w", err)
	}
	return nil
}

// ModemSignals returns the current state of all modem control signals
func (s *Session) ModemSignals() (ModemSignals, error) {
	if s.closed {
		return ModemSignals{}, ErrSessionClosed
	}

	status, err := s.sys.GetModem(s.fd)
	if err != nil {
		return ModemSignals{}, fmt.Errorf("TIOCMGET: %w", err)
	}
	return decodeModemStatus(status), nil
}

func decodeModemStatus(status int) ModemSignals {
	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}
}

// Write writes data in a single call. Anything less than the full buffer
// is reported as ErrShortWrite.
func (s *Session) Write(data []byte) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}

	n, err := s.sys.Write(s.fd, data)
	if err != nil {
		return n, err
	}
	if n < len(data) {
		return n, fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(data))
	}
	return n, nil
}

// Close restores the saved terminal settings and closes the device.
// Calling Close again returns ErrSessionClosed and touches nothing.
func (s *Session) Close() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true

	var err error
	if s.saved != nil {
		if rerr := s.sys.SetTermios(s.fd, s.saved); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("restore terminal attributes: %w", rerr))
		}
	}
	if cerr := s.sys.Close(s.fd); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("close: %w", cerr))
	}

	s.log.Debug("closed", zap.Bool("restored", s.saved != nil), zap.Error(err))
	return err
}
