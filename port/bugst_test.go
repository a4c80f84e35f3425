package port

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestOpenPortableNonExistentDevice(t *testing.T) {
	_, err := OpenPortable("/dev/nonexistent")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestOpenPortableMode(t *testing.T) {
	orig := bugstOpen
	t.Cleanup(func() { bugstOpen = orig })

	var got *serial.Mode
	boom := errors.New("boom")
	bugstOpen = func(device string, mode *serial.Mode) (serial.Port, error) {
		got = mode
		return nil, boom
	}

	_, err := OpenPortable("/dev/ttyUSB0",
		WithBaudRate(115200),
		WithStopBits(2),
		WithParity(ParityOdd),
		WithInitialDTR(false),
	)
	require.ErrorIs(t, err, boom)
	require.NotNil(t, got)
	require.Equal(t, 115200, got.BaudRate)
	require.Equal(t, 8, got.DataBits)
	require.Equal(t, serial.TwoStopBits, got.StopBits)
	require.Equal(t, serial.OddParity, got.Parity)
	require.NotNil(t, got.InitialStatusBits)
	require.False(t, got.InitialStatusBits.DTR)
	require.True(t, got.InitialStatusBits.RTS)
}

func TestOpenPortableInvalidOption(t *testing.T) {
	_, err := OpenPortable("/dev/ttyUSB0", WithDataBits(4))
	require.ErrorIs(t, err, ErrInvalidConfig)
}
