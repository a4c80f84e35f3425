/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allbin/go-splitflap/port"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  splitflap info /dev/ttyUSB0
  splitflap info /dev/ttyACM0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := port.GetPortInfo(args[0])
		if err != nil {
			return fmt.Errorf("error getting port info: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Port Information: %s\n\n", info.Path)
		fmt.Fprintf(out, "  Name:        %s\n", info.Name)
		fmt.Fprintf(out, "  Description: %s\n", info.Description)

		if info.IsUSB {
			fmt.Fprintln(out, "\nUSB Device Information:")
			fmt.Fprintf(out, "  Vendor ID:    %s\n", info.VendorID)
			fmt.Fprintf(out, "  Product ID:   %s\n", info.ProductID)
			if info.SerialNumber != "" {
				fmt.Fprintf(out, "  Serial:       %s\n", info.SerialNumber)
			}
			if info.Product != "" {
				fmt.Fprintf(out, "  Product:      %s\n", info.Product)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
