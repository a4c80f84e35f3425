/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/internal/hexfmt"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <hex>...",
	Short: "Send one packet to the display",
	Long: `Open the display, send the handshake, write one packet and close.

The packet is given as hex, either continuous or space separated:

  splitflap send -p /dev/ttyUSB0 0206000300000099
  splitflap send -p /dev/ttyUSB0 02 06 00 03 --wait 500ms

With --wait the link stays open for a while after the packet so replies are
printed the same way stream prints them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		packet, err := hexfmt.Parse(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("invalid hex data: %w", err)
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		wait, _ := cmd.Flags().GetDuration("wait")

		s, err := newSession(false)
		if err != nil {
			return err
		}
		defer s.log.Sync()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s Opening %s...\n", infoStyle.Render("⚡"), s.device)

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ready := newStreamingSignal()
		core := &passthroughCore{out: out, now: time.Now}
		d, err := splitflap.New(s.conn, func(send splitflap.SendFunc) splitflap.ProtocolCore {
			return core
		}, s.driverOptions(ready)...)
		if err != nil {
			return err
		}

		done := make(chan error, 1)
		go func() { done <- d.Run(ctx) }()

		select {
		case <-ready.ready:
		case err := <-done:
			if err == nil {
				err = errors.New("link closed before the handshake completed")
			}
			return fmt.Errorf("%s %w", errorStyle.Render("✗"), err)
		case <-ctx.Done():
			d.Close()
			<-done
			return fmt.Errorf("%s timed out waiting for the display", errorStyle.Render("✗"))
		}

		select {
		case <-ready.handshaken:
		case err := <-done:
			if err == nil {
				err = errors.New("link closed before the handshake was written")
			}
			return fmt.Errorf("%s %w", errorStyle.Render("✗"), err)
		case <-ctx.Done():
			d.Close()
			<-done
			return fmt.Errorf("%s timed out writing the handshake", errorStyle.Render("✗"))
		}
		fmt.Fprintf(out, "%s Handshake sent\n", successStyle.Render("✓"))
		d.Send(packet)
		if !d.IsAvailable() {
			d.Close()
			return fmt.Errorf("%s failed to send packet: %w", errorStyle.Render("✗"), <-done)
		}
		fmt.Fprintf(out, "%s Sent %d bytes: %s\n", successStyle.Render("✓"), len(packet), hexfmt.Dump(packet))

		if wait > 0 {
			select {
			case <-time.After(wait):
			case err := <-done:
				return err
			}
		}

		d.Close()
		return <-done
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for opening and handshaking")
	sendCmd.Flags().DurationP("wait", "w", 0, "Keep the link open this long to print replies")
}
