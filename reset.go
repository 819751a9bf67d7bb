package maple

import (
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// BootloaderMagic is written after the DTR pulse; libmaple firmware that
// sees it reboots into its bootloader.
const BootloaderMagic = "1EAF"

// Reset opens device, sends the bootloader sequence and closes it again.
// The device's terminal settings are restored on every path once Open
// has succeeded.
//
// A failure to restore or close after the sequence went out is logged but
// not returned, since the board has already been reset by then.
func Reset(device string, opts ...Option) error {
	return reset(unixTTY{}, device, opts...)
}

func reset(sys tty, device string, opts ...Option) (err error) {
	s, err := open(sys, device, opts...)
	if err != nil {
		return err
	}
	defer func() {
		cerr := s.Close()
		if err != nil {
			err = multierr.Append(err, cerr)
			return
		}
		if cerr != nil {
			s.log.Warn("reset sent but device not cleanly released", zap.Error(cerr))
		}
	}()

	return s.SendBootloaderSequence()
}

// SendBootloaderSequence drives RTS and DTR low, pulses DTR high for the
// configured pulse width, waits the settle delay and writes BootloaderMagic.
// The first failing step aborts the sequence.
func (s *Session) SendBootloaderSequence() error {
	if err := s.SetRTS(false); err != nil {
		return stageErr(StageLinesLow, s.device, err)
	}
	if err := s.SetDTR(false); err != nil {
		return stageErr(StageLinesLow, s.device, err)
	}
	s.log.Debug("lines low")

	if err := s.SetDTR(true); err != nil {
		return stageErr(StageAssertDTR, s.device, err)
	}
	raised := time.Now()
	time.Sleep(s.config.Pulse)

	if err := s.SetDTR(false); err != nil {
		return stageErr(StageDeassertDTR, s.device, err)
	}
	s.log.Debug("dtr pulsed", zap.Duration("high", time.Since(raised)))
	time.Sleep(s.config.Settle)

	n, err := s.Write([]byte(BootloaderMagic))
	if err != nil {
		return stageErr(StageWrite, s.device, err)
	}
	s.log.Debug("magic sent", zap.Int("bytes", n))

	return nil
}
