/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/internal/hexfmt"
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream raw traffic to and from the display",
	Long: `Open the display, send the handshake and stream until the link ends.

Every chunk read from the display is printed as a hex line. Hex lines typed
on stdin are sent to the display as packets once the handshake is done:

  splitflap stream --port /dev/ttyUSB0
  echo "02 06 00 03" | splitflap stream -p /dev/ttyUSB0

Press Ctrl+C to close the link.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}
		defer s.log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		s.serveMetrics(ctx)

		ascii, _ := cmd.Flags().GetBool("ascii")
		core := &passthroughCore{out: cmd.OutOrStdout(), ascii: ascii, now: time.Now}
		ready := newStreamingSignal()

		d, err := splitflap.New(s.conn, func(send splitflap.SendFunc) splitflap.ProtocolCore {
			return core
		}, s.driverOptions(ready)...)
		if err != nil {
			return err
		}

		go func() {
			<-ctx.Done()
			d.Close()
		}()
		go func() {
			select {
			case <-ready.ready:
			case <-ctx.Done():
				return
			}
			if err := forwardHexLines(cmd.InOrStdin(), d.Send, cmd.ErrOrStderr()); err != nil {
				s.log.Warn("stdin closed", zap.Error(err))
			}
		}()

		err = d.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().BoolP("ascii", "a", false, "Also print inbound chunks as ASCII")
}

// passthroughCore prints every chunk it receives. It does no framing.
type passthroughCore struct {
	mu    sync.Mutex
	out   io.Writer
	ascii bool
	now   func() time.Time
}

func (c *passthroughCore) OnReceivedData(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Render(c.now().Format("15:04:05.000"))
	rx := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Render("RX")
	line := fmt.Sprintf("%s %s %s", stamp, rx, hexfmt.Dump(chunk))
	if c.ascii {
		line += "  " + hexfmt.ASCII(chunk)
	}
	fmt.Fprintln(c.out, line)
}

// forwardHexLines sends each non-blank hex line of r as one packet. Lines
// that do not parse are reported on errOut and skipped.
func forwardHexLines(r io.Reader, send splitflap.SendFunc, errOut io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		packet, err := hexfmt.Parse(line)
		if err != nil {
			fmt.Fprintf(errOut, "skipping %q: %v\n", line, err)
			continue
		}
		send(packet)
	}
	return scanner.Err()
}
