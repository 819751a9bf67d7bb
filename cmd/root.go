/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	maple "github.com/allbin/maple-reset"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.1"

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// exitError carries the process exit code for a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "maple-reset <device>",
	Short: "Reset a Maple board into its bootloader",
	Long: `Send the libmaple bootloader reset sequence over a serial device.

RTS and DTR are driven low, DTR is pulsed high then low, and the bytes
"1EAF" are written. The board reboots into its DFU bootloader, ready to be
flashed. The device's terminal settings are restored afterwards.

Exit codes:
  0   reset sequence sent
  1   usage error, or DTR could not be raised
  2   DTR could not be lowered
  3   the magic bytes could not be written
  4   --wait-dfu was given and no bootloader appeared in time
  255 the device could not be opened or configured

Examples:
  maple-reset /dev/ttyACM0
  maple-reset --pulse 100ms /dev/ttyACM0
  maple-reset --wait-dfu 2s /dev/ttyACM0
  MAPLE_RESET_VERBOSE=1 maple-reset /dev/ttyACM0`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	device := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "maple-reset %s\n\n", version)

	logger := newLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))
	defer logger.Sync() //nolint:errcheck

	err := maple.Reset(device,
		maple.WithPulse(viper.GetDuration("pulse")),
		maple.WithSettle(viper.GetDuration("settle")),
		maple.WithLogger(logger),
	)
	if err != nil {
		return &exitError{code: maple.ExitCode(err), err: err}
	}

	fmt.Fprintf(out, "%s Reset sequence sent to %s\n", successStyle.Render("✓"), device)

	if wait := viper.GetDuration("wait-dfu"); wait > 0 {
		dfu, err := maple.WaitForDFU(wait)
		if err != nil {
			return &exitError{code: maple.ExitCode(err), err: err}
		}
		fmt.Fprintf(out, "%s Bootloader up on USB bus %s\n", successStyle.Render("✓"), dfu.BusID)
	}
	return nil
}

// newLogger returns a console logger on w when verbose, else a no-op logger
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// Execute adds all child commands to the root command and runs it,
// exiting the process with the resulting status.
func Execute() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	// cobra falls back to os.Args on a nil slice
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return maple.ExitOK
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", errorStyle.Render("Error:"), err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Argument and flag errors come straight from cobra
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Usage: %s\n", cmd.UseLine())
	return maple.ExitUsage
}

func initConfig() {
	viper.SetEnvPrefix("MAPLE_RESET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log each step of the sequence to stderr")
	rootCmd.Flags().Duration("pulse", 50*time.Millisecond, "How long DTR is held high")
	rootCmd.Flags().Duration("settle", 50*time.Millisecond, "Delay after DTR drops before writing the magic bytes")
	rootCmd.Flags().Duration("wait-dfu", 0, "After the reset, wait this long for the board to appear in DFU mode (0 disables)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")) //nolint:errcheck
	viper.BindPFlag("pulse", rootCmd.Flags().Lookup("pulse"))               //nolint:errcheck
	viper.BindPFlag("settle", rootCmd.Flags().Lookup("settle"))             //nolint:errcheck
	viper.BindPFlag("wait-dfu", rootCmd.Flags().Lookup("wait-dfu"))         //nolint:errcheck
}
