/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/allbin/go-splitflap/port"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports a display could be attached to",
	Long: `List the serial ports found under /dev.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		devDir, _ := cmd.Flags().GetString("dev")
		ports, err := port.ListPorts(devDir)
		if err != nil {
			return fmt.Errorf("error listing ports: %w", err)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		out := cmd.OutOrStdout()
		filtered := filterPorts(ports, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Fprintf(out, "No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Fprintln(out, "No serial ports found")
			}
			return nil
		}

		if tableFormat {
			renderTable(out, filtered)
		} else {
			for _, p := range filtered {
				fmt.Fprintln(out, p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().String("dev", "/dev", "Directory to scan for device nodes")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, p := range ports {
		name := strings.ToLower(p[strings.LastIndex(p, "/")+1:])
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, p)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, p)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, p)
			}
		}
	}
	return filtered
}

// renderTable renders the port list with USB details where known
func renderTable(out io.Writer, ports []string) {
	fmt.Fprintf(out, "Found %d serial port(s):\n\n", len(ports))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("Port", "Description", "USB ID", "Product")

	for _, p := range ports {
		info, err := port.GetPortInfo(p)
		if err != nil {
			t.Row(p, fmt.Sprintf("Error: %v", err), "", "")
			continue
		}
		usbID := ""
		if info.IsUSB {
			usbID = info.VendorID + ":" + info.ProductID
		}
		t.Row(info.Name, info.Description, usbID, info.Product)
	}

	fmt.Fprintln(out, t.Render())
}
