package splitflap_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/port"
)

type coreFunc func(chunk []byte)

func (f coreFunc) OnReceivedData(chunk []byte) { f(chunk) }

// readFull reads n bytes from r in the background so a silent peer cannot hang the test
func readFull(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()
	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return
		}
		got <- buf
	}()
	select {
	case b := <-got:
		return b
	case <-time.After(3 * time.Second):
		t.Fatalf("timeout reading %d bytes", n)
		return nil
	}
}

func TestSessionOverPTY(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	conn, err := port.NewConn(slave.Name(), port.BackendTermios, nil, port.WithReadTimeout(100*time.Millisecond))
	require.NoError(t, err)

	received := make(chan []byte, 64)
	var send splitflap.SendFunc
	d, err := splitflap.New(conn, func(s splitflap.SendFunc) splitflap.ProtocolCore {
		send = s
		return coreFunc(func(chunk []byte) { received <- chunk })
	}, splitflap.WithSettleDelay(50*time.Millisecond))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	// The device sees the preamble first
	require.Equal(t, make([]byte, splitflap.PreambleLength), readFull(t, master, splitflap.PreambleLength))
	require.Equal(t, splitflap.StateStreaming, d.State())

	_, err = master.Write([]byte("hello"))
	require.NoError(t, err)

	var got []byte
	deadline := time.After(3 * time.Second)
	for len(got) < 5 {
		select {
		case chunk := <-received:
			got = append(got, chunk...)
		case <-deadline:
			t.Fatalf("timeout waiting for inbound bytes, got %q", got)
		}
	}
	require.Equal(t, "hello", string(got))

	send([]byte{0x01, 0x02, 0x00})
	require.Equal(t, []byte{0x01, 0x02, 0x00}, readFull(t, master, 3))

	require.NoError(t, d.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
	require.False(t, d.IsAvailable())
	require.Equal(t, splitflap.StateDisconnected, d.State())
}

func TestSessionOpenFailure(t *testing.T) {
	conn, err := port.NewConn("/dev/nonexistent", port.BackendTermios, nil)
	require.NoError(t, err)

	d, err := splitflap.New(conn, func(s splitflap.SendFunc) splitflap.ProtocolCore {
		return coreFunc(func([]byte) {})
	})
	require.NoError(t, err)

	err = d.Run(context.Background())
	require.ErrorIs(t, err, splitflap.ErrOpenFailure)
	require.Equal(t, splitflap.StateFaulted, d.State())
}
