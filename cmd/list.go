/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	maple "github.com/allbin/maple-reset"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99")).
				Padding(0, 1)

	tableCellStyle  = lipgloss.NewStyle().Padding(0, 1)
	tableMapleStyle = tableCellStyle.Foreground(lipgloss.Color("40"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports, or the Maple boards on the USB bus",
	Long: `List the serial ports on the system with their USB ids.

With --maple, scan the USB bus for Maple boards (vendor id 1EAF) instead.
A board running a sketch is 1EAF:0004 and has a serial port that
maple-reset can reset; a board in its bootloader is 1EAF:0003 (DFU) and
has no serial port at all, so it only shows up with --maple.

Examples:
  maple-reset list
  maple-reset list --maple`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		onlyMaple, _ := cmd.Flags().GetBool("maple")
		out := cmd.OutOrStdout()

		if onlyMaple {
			maples, err := maple.FindMaples()
			if err != nil {
				return &exitError{code: 1, err: fmt.Errorf("scanning USB bus: %w", err)}
			}
			if len(maples) == 0 {
				fmt.Fprintln(out, "No Maple boards found")
				return nil
			}
			renderMapleTable(out, maples)
			return nil
		}

		ports, err := maple.ListPorts()
		if err != nil {
			return &exitError{code: 1, err: fmt.Errorf("listing ports: %w", err)}
		}

		var infos []*maple.PortInfo
		for _, p := range ports {
			info, err := maple.GetPortInfo(p)
			if err != nil {
				continue
			}
			infos = append(infos, info)
		}

		if len(infos) == 0 {
			fmt.Fprintln(out, "No serial ports found")
			return nil
		}

		renderPortTable(out, infos)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("maple", "m", false, "Scan the USB bus for Maple boards, including ones in DFU mode")
}

// renderPortTable renders the ports as a styled table
func renderPortTable(w io.Writer, infos []*maple.PortInfo) {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, portRow(info))
	}

	t := newTable("Port", "Description", "USB ID", "Product", "Maple").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if row >= 0 && row < len(infos) && infos[row].IsMaple() {
				return tableMapleStyle
			}
			return tableCellStyle
		})

	fmt.Fprintf(w, "Found %d serial port(s):\n\n", len(infos))
	fmt.Fprintln(w, t.Render())
}

// renderMapleTable renders the Maple boards found on the USB bus
func renderMapleTable(w io.Writer, maples []*maple.MapleDevice) {
	rows := make([][]string, 0, len(maples))
	for _, m := range maples {
		rows = append(rows, mapleRow(m))
	}

	t := newTable("Bus", "USB ID", "Product", "Mode", "Port").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableMapleStyle
		})

	fmt.Fprintf(w, "Found %d Maple board(s):\n\n", len(maples))
	fmt.Fprintln(w, t.Render())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...)
}

func portRow(info *maple.PortInfo) []string {
	usbID := "-"
	if info.VendorID != "" || info.ProductID != "" {
		usbID = info.VendorID + ":" + info.ProductID
	}
	mode := info.Mode()
	if mode == "" {
		if info.IsMaple() {
			mode = "unknown"
		} else {
			mode = "-"
		}
	}
	return []string{info.Path, info.Description, usbID, orDash(info.Product), mode}
}

func mapleRow(m *maple.MapleDevice) []string {
	mode := m.Mode()
	if mode == "" {
		mode = "unknown"
	}
	return []string{m.BusID, maple.MapleVendorID + ":" + m.ProductID, orDash(m.Product), mode, orDash(m.Port)}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
