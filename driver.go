package splitflap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Driver moves bytes between a Connection and a ProtocolCore for a single
// session. It does not retry or reconnect: once the connection is gone the
// Driver is spent, and a new Connection and Driver are needed.
type Driver struct {
	cfg  Config
	log  *zap.Logger
	obs  Observer
	core ProtocolCore

	guard   *connectionGuard
	writer  *writeChannel
	reading *atomic.Bool

	// stateMu orders state changes with their observer notifications
	stateMu sync.Mutex
	state   *atomic.Int32

	faultOnce sync.Once
	fault     *atomic.Error
}

// New creates a driver that owns conn. The factory receives the driver's
// Send as its outbound-packet callback.
func New(conn Connection, factory CoreFactory, opts ...Option) (*Driver, error) {
	if conn == nil || factory == nil {
		return nil, ErrInvalidConfig
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	d := &Driver{
		cfg:     cfg,
		log:     cfg.Logger,
		obs:     cfg.Observer,
		writer:  &writeChannel{},
		reading: atomic.NewBool(false),
		state:   atomic.NewInt32(int32(StateDisconnected)),
		fault:   atomic.NewError(nil),
	}
	d.guard = newConnectionGuard(conn, d.onDisconnect)

	d.core = factory(d.Send)
	if d.core == nil {
		d.Close()
		return nil, fmt.Errorf("%w: factory returned no protocol core", ErrInvalidConfig)
	}
	return d, nil
}

// Run opens the connection, waits out the settle delay, sends the handshake
// preamble and then streams until end of stream, disconnect or an I/O fault.
//
// ctx bounds the open and settle phases only. Once streaming, the session ends
// through the connection: a disconnect notification, Close, or a fault.
//
// Run returns nil when the session ended without a fault, the open or
// endpoint error when the connection could not be started, and otherwise the
// first read or write fault.
func (d *Driver) Run(ctx context.Context) error {
	if !d.guard.isAvailable() {
		return ErrUnavailable
	}
	if !d.transition(StateDisconnected, StateOpening) {
		return ErrAlreadyStarted
	}

	conn := d.guard.current()
	if conn == nil {
		d.moveTo(StateDisconnected)
		return ErrUnavailable
	}

	if err := conn.Open(ctx, d.cfg.BaudRate); err != nil {
		if !d.guard.isAvailable() {
			return ErrUnavailable
		}
		err = fmt.Errorf("%w: %v", ErrOpenFailure, err)
		d.fail(err)
		return err
	}

	r, w := conn.Reader(), conn.Writer()
	if r == nil || w == nil {
		d.fail(ErrMissingEndpoints)
		return ErrMissingEndpoints
	}

	if !d.transition(StateOpening, StateHandshaking) {
		return d.Err()
	}
	if err := d.settle(ctx); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return d.Err()
		}
		d.Close()
		return err
	}

	if err := d.writer.acquire(w); err != nil {
		d.fail(err)
		return err
	}
	d.sendHandshake()

	if !d.transition(StateHandshaking, StateStreaming) {
		d.writer.release()
		return d.Err()
	}

	if err := d.readLoop(r); err != nil {
		d.fail(err)
		return err
	}

	// The link is presumed gone after the stream ends, whatever ended it.
	d.Close()
	return d.Err()
}

// Close ends the session the same way a disconnect notification does. It is
// safe to call repeatedly and concurrently; only the first call has an effect.
func (d *Driver) Close() error {
	if c, ok := d.guard.invalidate(); ok {
		d.onDisconnect(c)
	}
	return nil
}

// IsAvailable reports whether the driver may still be used. Once false it
// stays false.
func (d *Driver) IsAvailable() bool {
	return d.guard.isAvailable()
}

// State returns the current lifecycle state
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Err returns the first fault recorded by the driver, if any
func (d *Driver) Err() error {
	return d.fault.Load()
}

// transition moves from one state to the next, failing if another
// transition got there first
func (d *Driver) transition(from, to State) bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	if !d.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	d.stateChanged(from, to)
	return true
}

// moveTo ends the session in state to. Faulted is final.
func (d *Driver) moveTo(to State) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	from := State(d.state.Load())
	if from == StateFaulted || from == to {
		return
	}
	d.state.Store(int32(to))
	d.stateChanged(from, to)
}

// stateChanged must be called with stateMu held
func (d *Driver) stateChanged(from, to State) {
	d.log.Info("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	d.obs.StateChanged(from, to)
}
