package maple

import (
	"time"

	"golang.org/x/sys/unix"
)

const fakeFD = 7

// ttyCall records one syscall made against fakeTTY
type ttyCall struct {
	op      string
	at      time.Time
	status  int
	termios unix.Termios
	data    []byte
}

// fakeTTY is an in-memory terminal that records every call and can be told
// to fail the nth call of a given operation.
type fakeTTY struct {
	termios unix.Termios
	modem   int

	failAt     map[string]int // op -> 1-based call number that fails
	failErr    error
	shortWrite int // if > 0, Write reports this many bytes

	counts map[string]int
	calls  []ttyCall
}

func newFakeTTY() *fakeTTY {
	return &fakeTTY{
		termios: unix.Termios{
			Iflag: unix.ICRNL,
			Oflag: unix.OPOST | unix.ONLCR,
			Cflag: unix.CS8 | unix.CREAD | unix.HUPCL,
			Lflag: unix.ICANON | unix.ECHO,
		},
		modem:   unix.TIOCM_RTS | unix.TIOCM_DTR | unix.TIOCM_CTS,
		failAt:  map[string]int{},
		failErr: unix.EIO,
		counts:  map[string]int{},
	}
}

func (f *fakeTTY) failOn(op string, nth int) *fakeTTY {
	f.failAt[op] = nth
	return f
}

func (f *fakeTTY) record(op string, c ttyCall) error {
	f.counts[op]++
	c.op = op
	c.at = time.Now()
	f.calls = append(f.calls, c)
	if nth, ok := f.failAt[op]; ok && nth == f.counts[op] {
		return f.failErr
	}
	return nil
}

func (f *fakeTTY) Open(path string) (int, error) {
	if err := f.record("open", ttyCall{}); err != nil {
		return -1, err
	}
	return fakeFD, nil
}

func (f *fakeTTY) GetTermios(fd int) (*unix.Termios, error) {
	if err := f.record("getattr", ttyCall{}); err != nil {
		return nil, err
	}
	t := f.termios
	return &t, nil
}

func (f *fakeTTY) SetTermios(fd int, termios *unix.Termios) error {
	if err := f.record("setattr", ttyCall{termios: *termios}); err != nil {
		return err
	}
	f.termios = *termios
	return nil
}

func (f *fakeTTY) Flush(fd int) error {
	return f.record("flush", ttyCall{})
}

func (f *fakeTTY) GetModem(fd int) (int, error) {
	if err := f.record("getmodem", ttyCall{}); err != nil {
		return 0, err
	}
	return f.modem, nil
}

func (f *fakeTTY) SetModem(fd int, status int) error {
	if err := f.record("setmodem", ttyCall{status: status}); err != nil {
		return err
	}
	f.modem = status
	return nil
}

func (f *fakeTTY) Write(fd int, data []byte) (int, error) {
	buf := append([]byte(nil), data...)
	if err := f.record("write", ttyCall{data: buf}); err != nil {
		return 0, err
	}
	if f.shortWrite > 0 {
		return f.shortWrite, nil
	}
	return len(data), nil
}

func (f *fakeTTY) Close(fd int) error {
	return f.record("close", ttyCall{})
}

func (f *fakeTTY) ops() []string {
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.op
	}
	return ops
}

// find returns the calls with the given op, in order
func (f *fakeTTY) find(op string) []ttyCall {
	var out []ttyCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}
