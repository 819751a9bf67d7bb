// Package maple sends the libmaple bootloader reset sequence to a board
// attached over a serial device.
//
// The sequence is what the Maple bootloader watches for on its USB serial
// port: RTS and DTR driven low, DTR pulsed high for about 50ms, then the
// four ASCII bytes "1EAF" once DTR has been low for another 50ms. The
// board reboots into its DFU bootloader and can then be flashed.
//
// This library targets Linux and talks to the tty layer directly through
// termios and modem control ioctls.
//
// # Basic Usage
//
// Reset a board in one call:
//
//	if err := maple.Reset("/dev/ttyACM0"); err != nil {
//	    log.Fatal(err)
//	}
//
// Reset opens the device, saves its terminal settings, switches it to raw
// mode with hardware flow control, sends the sequence and restores the
// saved settings before closing, whether or not the sequence succeeded.
//
// # Sessions
//
// For finer control, open a Session and drive it yourself:
//
//	sess, err := maple.Open("/dev/ttyACM0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	signals, err := sess.ModemSignals()
//	fmt.Printf("RTS=%v DTR=%v\n", signals.RTS, signals.DTR)
//
//	err = sess.SendBootloaderSequence()
//
// # Configuration Options
//
//	err := maple.Reset("/dev/ttyACM0",
//	    maple.WithPulse(100*time.Millisecond),
//	    maple.WithSettle(50*time.Millisecond),
//	    maple.WithLogger(logger),
//	)
//
// # Error Handling
//
// Every failing step is reported as a *StageError naming the step. Use
// ExitCode to turn it into the exit status of the maple-reset tool:
//
//	err := maple.Reset(path)
//	var se *maple.StageError
//	if errors.As(err, &se) && se.Stage == maple.StageWrite {
//	    // the pulse went out but the magic bytes did not
//	}
//	os.Exit(maple.ExitCode(err))
//
// # Port Discovery
//
// ListPorts and GetPortInfo find serial devices and read their USB ids from
// sysfs. A Maple board running a sketch enumerates as 1EAF:0004 and has a
// serial port. In its bootloader it is 1EAF:0003 and has none, so
// FindMaples looks for boards on the USB bus instead:
//
//	maples, err := maple.FindMaples()
//	for _, m := range maples {
//	    fmt.Printf("%s %s %s\n", m.BusID, m.Mode(), m.Port)
//	}
//
// WaitForDFU polls the bus after a reset until the bootloader shows up:
//
//	if _, err := maple.WaitForDFU(2 * time.Second); err != nil {
//	    // the board did not come back in DFU mode
//	}
package maple
