/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	maple "github.com/allbin/maple-reset"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <device>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata,
and whether it belongs to a Maple board.

Examples:
  maple-reset info /dev/ttyACM0

USB vendor/product ids, serial numbers and names are read from sysfs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := maple.GetPortInfo(args[0])
		if err != nil {
			return &exitError{code: 1, err: fmt.Errorf("getting port info: %w", err)}
		}

		printPortInfo(cmd.OutOrStdout(), info)
		return nil
	},
}

func printPortInfo(w io.Writer, info *maple.PortInfo) {
	fmt.Fprintf(w, "Port Information: %s\n\n", info.Path)
	fmt.Fprintf(w, "  Name:        %s\n", info.Name)
	fmt.Fprintf(w, "  Description: %s\n", info.Description)

	if info.VendorID != "" || info.ProductID != "" {
		fmt.Fprintln(w, "\nUSB Device Information:")
		if info.VendorID != "" {
			fmt.Fprintf(w, "  Vendor ID:    %s\n", info.VendorID)
		}
		if info.ProductID != "" {
			fmt.Fprintf(w, "  Product ID:   %s\n", info.ProductID)
		}
		if info.SerialNumber != "" {
			fmt.Fprintf(w, "  Serial:       %s\n", info.SerialNumber)
		}
		if info.Manufacturer != "" {
			fmt.Fprintf(w, "  Manufacturer: %s\n", info.Manufacturer)
		}
		if info.Product != "" {
			fmt.Fprintf(w, "  Product:      %s\n", info.Product)
		}
	}

	if info.IsMaple() {
		mode := info.Mode()
		if mode == "" {
			mode = "unknown"
		}
		fmt.Fprintf(w, "\nMaple board: yes (%s mode)\n", mode)
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
