/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/internal/tui/models"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a live session in a terminal UI",
	Long: `Open the display and show the session in a terminal interface:
driver state, traffic counters and a table of recent chunks and packets.

Press i to type a hex packet and enter to send it, v to page through the
traffic table, ? for all key bindings and q to quit. Logs only go to file
outputs while the interface is running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(true)
		if err != nil {
			return err
		}
		defer s.log.Sync()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		s.serveMetrics(ctx)

		bridge := models.NewBridge(1024)
		d, err := splitflap.New(s.conn, func(send splitflap.SendFunc) splitflap.ProtocolCore {
			return receivedFunc(bridge.Received)
		}, s.driverOptions(bridge)...)
		if err != nil {
			return err
		}
		defer d.Close()

		go func() {
			err := d.Run(ctx)
			bridge.End(err)
		}()

		p := tea.NewProgram(models.NewWatchModel(s.device, s.baud, bridge, d.Send), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// receivedFunc adapts a function to splitflap.ProtocolCore
type receivedFunc func(chunk []byte)

func (f receivedFunc) OnReceivedData(chunk []byte) { f(chunk) }
