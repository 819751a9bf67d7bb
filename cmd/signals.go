/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	maple "github.com/allbin/maple-reset"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <device>",
	Short: "Display current modem signal states",
	Long: `Display the current state of all modem control signals.

The device is opened the same way a reset opens it: pending input and
output are flushed, and the terminal settings are restored before exit.
No line is set explicitly, but opening and closing a tty can still move
DTR and RTS (with HUPCL the kernel raises them on open and drops them on
close), which is enough to reset some boards.

Examples:
  maple-reset signals /dev/ttyACM0

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)
  RTS - Request To Send (output)
  DTR - Data Terminal Ready (output)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		device := args[0]

		sess, err := maple.Open(device)
		if err != nil {
			return &exitError{code: maple.ExitCode(err), err: err}
		}
		defer sess.Close()

		signals, err := sess.ModemSignals()
		if err != nil {
			return &exitError{code: 1, err: fmt.Errorf("reading modem signals: %w", err)}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Modem Signals for %s:\n\n", device)
		fmt.Fprintf(out, "  CTS (Clear To Send):       %s\n", formatSignalState(signals.CTS))
		fmt.Fprintf(out, "  DSR (Data Set Ready):      %s\n", formatSignalState(signals.DSR))
		fmt.Fprintf(out, "  RI  (Ring Indicator):      %s\n", formatSignalState(signals.RI))
		fmt.Fprintf(out, "  DCD (Data Carrier Detect): %s\n", formatSignalState(signals.DCD))
		fmt.Fprintf(out, "  RTS (Request To Send):     %s\n", formatSignalState(signals.RTS))
		fmt.Fprintf(out, "  DTR (Data Terminal Ready): %s\n", formatSignalState(signals.DTR))
		return nil
	},
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}
