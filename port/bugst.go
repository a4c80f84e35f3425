package port

import (
	"errors"
	"fmt"
	"io/fs"

	"go.bug.st/serial"
)

// bugstOpen is swapped out in tests
var bugstOpen = func(device string, mode *serial.Mode) (serial.Port, error) {
	return serial.Open(device, mode)
}

// bugstPort adapts a go.bug.st/serial port to the Port interface
type bugstPort struct {
	p serial.Port
}

var _ Port = (*bugstPort)(nil)

// OpenPortable opens a serial port through go.bug.st/serial. It works on every
// platform that library supports, at the cost of the finer termios control Open has.
func OpenPortable(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		Parity:   bugstParity(config.Parity),
		StopBits: serial.OneStopBit,
	}
	if config.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	if config.InitialRTS != nil || config.InitialDTR != nil {
		bits := &serial.ModemOutputBits{RTS: true, DTR: true}
		if config.InitialRTS != nil {
			bits.RTS = *config.InitialRTS
		}
		if config.InitialDTR != nil {
			bits.DTR = *config.InitialDTR
		}
		mode.InitialStatusBits = bits
	}

	p, err := bugstOpen(device, mode)
	if err != nil {
		return nil, classifyBugstError(device, err)
	}

	if err := p.SetReadTimeout(config.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &bugstPort{p: p}, nil
}

func bugstParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

func classifyBugstError(device string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
	}
	var perr *serial.PortError
	if !errors.As(err, &perr) {
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
	switch perr.Code() {
	case serial.PortNotFound:
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
	case serial.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, device)
	case serial.PortBusy:
		return fmt.Errorf("%w: %s", ErrDeviceInUse, device)
	case serial.InvalidSpeed:
		return ErrInvalidBaudRate
	case serial.PortClosed:
		return ErrPortClosed
	default:
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
}

func (b *bugstPort) Read(buf []byte) (int, error) {
	n, err := b.p.Read(buf)
	if err != nil {
		var perr *serial.PortError
		if errors.As(err, &perr) && perr.Code() == serial.PortClosed {
			return n, ErrPortClosed
		}
	}
	return n, err
}

func (b *bugstPort) Write(data []byte) (int, error) {
	return b.p.Write(data)
}

func (b *bugstPort) Close() error {
	return b.p.Close()
}

func (b *bugstPort) Drain() error {
	return b.p.Drain()
}

func (b *bugstPort) FlushInput() error {
	return b.p.ResetInputBuffer()
}

func (b *bugstPort) FlushOutput() error {
	return b.p.ResetOutputBuffer()
}
