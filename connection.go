package splitflap

import (
	"context"
	"io"
)

// Connection is the physical link to the display. A Connection is opened at
// most once; after it is closed a new one is needed to reach the device again.
type Connection interface {
	// Open opens the link at the given baud rate
	Open(ctx context.Context, baud int) error
	// Reader returns the readable endpoint, or nil if there is none.
	// A Read returning io.EOF ends the stream; (0, nil) is an empty chunk.
	Reader() io.Reader
	// Writer returns the writable endpoint, or nil if there is none
	Writer() io.Writer
	Close() error
	// Disconnected is closed when the link goes away underneath the driver.
	// It may return nil if the link has no such notification.
	Disconnected() <-chan struct{}
}

// ProtocolCore decodes inbound byte chunks into frames. Chunks are not
// aligned to frame boundaries.
type ProtocolCore interface {
	OnReceivedData(chunk []byte)
}

// SendFunc transmits one fully framed packet verbatim
type SendFunc func(packet []byte)

// CoreFactory builds a ProtocolCore around the driver's outbound callback
type CoreFactory func(send SendFunc) ProtocolCore

// Observer receives driver events. Implementations must not block or call
// back into the driver. StateChanged calls are delivered in transition order.
type Observer interface {
	StateChanged(from, to State)
	ChunkReceived(n int)
	PacketSent(n int)
	PacketDropped(n int)
	Fault(err error)
}

type nopObserver struct{}

func (nopObserver) StateChanged(from, to State) {}
func (nopObserver) ChunkReceived(n int)         {}
func (nopObserver) PacketSent(n int)            {}
func (nopObserver) PacketDropped(n int)         {}
func (nopObserver) Fault(err error)             {}

type multiObserver []Observer

// MultiObserver fans every event out to each of obs in order
func MultiObserver(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) StateChanged(from, to State) {
	for _, o := range m {
		o.StateChanged(from, to)
	}
}

func (m multiObserver) ChunkReceived(n int) {
	for _, o := range m {
		o.ChunkReceived(n)
	}
}

func (m multiObserver) PacketSent(n int) {
	for _, o := range m {
		o.PacketSent(n)
	}
}

func (m multiObserver) PacketDropped(n int) {
	for _, o := range m {
		o.PacketDropped(n)
	}
}

func (m multiObserver) Fault(err error) {
	for _, o := range m {
		o.Fault(err)
	}
}
