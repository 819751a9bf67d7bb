package maple

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound = errors.New("serial device not found")
	ErrInvalidConfig  = errors.New("invalid reset configuration")
	ErrSessionClosed  = errors.New("serial session is closed")
	ErrShortWrite     = errors.New("short write to serial device")
	ErrDFUTimeout     = errors.New("timeout waiting for Maple DFU device")
)

// Stage identifies the step of the reset sequence that failed
type Stage int

const (
	StageOpen Stage = iota
	StageGetAttr
	StageFlush
	StageSetAttr
	StageLinesLow
	StageAssertDTR
	StageDeassertDTR
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "open"
	case StageGetAttr:
		return "get attributes"
	case StageFlush:
		return "flush"
	case StageSetAttr:
		return "set attributes"
	case StageLinesLow:
		return "lines low"
	case StageAssertDTR:
		return "assert DTR"
	case StageDeassertDTR:
		return "deassert DTR"
	case StageWrite:
		return "write"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports a failed step of the reset sequence
type StageError struct {
	Stage  Stage
	Device string
	Err    error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StageOpen:
		return fmt.Sprintf("could not open %s: %v", e.Device, e.Err)
	case StageGetAttr:
		return fmt.Sprintf("failed to get terminal attributes of %s: %v", e.Device, e.Err)
	case StageFlush:
		return fmt.Sprintf("failed to flush %s: %v", e.Device, e.Err)
	case StageSetAttr:
		return fmt.Sprintf("failed to set terminal attributes of %s: %v", e.Device, e.Err)
	case StageLinesLow:
		return fmt.Sprintf("failed to drive RTS/DTR low on %s: %v", e.Device, e.Err)
	case StageAssertDTR, StageDeassertDTR:
		return fmt.Sprintf("failed to set DTR on %s: %v", e.Device, e.Err)
	case StageWrite:
		return fmt.Sprintf("could not send string to %s: %v", e.Device, e.Err)
	default:
		return fmt.Sprintf("%s failed on %s: %v", e.Stage, e.Device, e.Err)
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Process exit codes reported by the command line tool
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitAssertDTR   = 1
	ExitDeassertDTR = 2
	ExitWrite       = 3
	ExitNoDFU       = 4
	ExitOpen        = -1
)

// ExitCode maps an error returned by Reset or WaitForDFU to a process exit
// code. A nil error maps to ExitOK, a rejected option to ExitUsage and a
// DFU timeout to ExitNoDFU. Any failure before the DTR pulse maps to
// ExitOpen, matching a device that could not be brought up.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ErrInvalidConfig) {
		return ExitUsage
	}
	if errors.Is(err, ErrDFUTimeout) {
		return ExitNoDFU
	}

	var se *StageError
	if !errors.As(err, &se) {
		return ExitOpen
	}

	switch se.Stage {
	case StageAssertDTR:
		return ExitAssertDTR
	case StageDeassertDTR:
		return ExitDeassertDTR
	case StageWrite:
		return ExitWrite
	default:
		return ExitOpen
	}
}

func stageErr(stage Stage, device string, err error) error {
	return &StageError{Stage: stage, Device: device, Err: err}
}
