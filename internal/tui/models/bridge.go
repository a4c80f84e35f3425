package models

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/atomic"

	splitflap "github.com/allbin/go-splitflap"
)

// StatusMsg carries the latest driver state, the fault that ended the
// session if any, and whether Run has returned
type StatusMsg struct {
	State splitflap.State
	Err   error
	Ended bool
}

// TrafficMsg carries bytes read from or written to the display
type TrafficMsg struct {
	At   time.Time
	Data []byte
	TX   bool
}

// ChunkMsg counts a chunk forwarded to the protocol core
type ChunkMsg struct{ N int }

// SentMsg counts a packet written to the display
type SentMsg struct{ N int }

// DroppedMsg counts a packet dropped by the driver
type DroppedMsg struct{ N int }

// Bridge carries driver events into a bubbletea program. It implements
// splitflap.Observer and never blocks the driver. Traffic and counter events
// beyond the buffer are counted as lost; state, fault and session end are
// kept in fields and are never lost.
type Bridge struct {
	events chan tea.Msg
	lost   *atomic.Int64

	state *atomic.Int32
	fault *atomic.Error
	ended *atomic.Bool
	// wake holds at most one pending status refresh
	wake chan struct{}
}

var _ splitflap.Observer = (*Bridge)(nil)

func NewBridge(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bridge{
		events: make(chan tea.Msg, buffer),
		lost:   atomic.NewInt64(0),
		state:  atomic.NewInt32(int32(splitflap.StateDisconnected)),
		fault:  atomic.NewError(nil),
		ended:  atomic.NewBool(false),
		wake:   make(chan struct{}, 1),
	}
}

// Post queues msg for the program
func (b *Bridge) Post(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
		b.lost.Inc()
	}
}

// Lost returns how many events were discarded because the program lagged
func (b *Bridge) Lost() int64 {
	return b.lost.Load()
}

// Status returns the latest status
func (b *Bridge) Status() StatusMsg {
	return StatusMsg{
		State: splitflap.State(b.state.Load()),
		Err:   b.fault.Load(),
		Ended: b.ended.Load(),
	}
}

func (b *Bridge) notify() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// End records that Run returned with err
func (b *Bridge) End(err error) {
	if err != nil && b.fault.Load() == nil {
		b.fault.Store(err)
	}
	b.ended.Store(true)
	b.notify()
}

// Listen waits for the next event. A pending status refresh is delivered
// before queued traffic.
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.wake:
			return b.Status()
		default:
		}
		select {
		case <-b.wake:
			return b.Status()
		case msg := <-b.events:
			return msg
		}
	}
}

func (b *Bridge) StateChanged(from, to splitflap.State) {
	b.state.Store(int32(to))
	b.notify()
}

func (b *Bridge) Fault(err error) {
	if b.fault.Load() == nil {
		b.fault.Store(err)
	}
	b.notify()
}

func (b *Bridge) ChunkReceived(n int) { b.Post(ChunkMsg{N: n}) }
func (b *Bridge) PacketSent(n int)    { b.Post(SentMsg{N: n}) }
func (b *Bridge) PacketDropped(n int) { b.Post(DroppedMsg{N: n}) }

// Received is a ProtocolCore hook that shows inbound chunks in the view
func (b *Bridge) Received(chunk []byte) {
	b.Post(TrafficMsg{At: time.Now(), Data: chunk})
}
