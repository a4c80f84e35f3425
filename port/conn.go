package port

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Backend selects the implementation used to talk to the device
type Backend string

const (
	BackendTermios  Backend = "termios"
	BackendPortable Backend = "bugst"
)

// ParseBackend validates a backend name
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendTermios, BackendPortable:
		return Backend(name), nil
	case "":
		return BackendTermios, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Conn is a single-use connection to a serial device. It is opened once,
// exposes the opened port as its read and write endpoints, and signals
// Disconnected when the device node goes away. A closed Conn cannot be
// reopened; create a new one instead.
type Conn struct {
	device  string
	backend Backend
	opts    []Option
	log     *zap.Logger

	mu      sync.Mutex
	p       Port
	closed  bool
	watcher *removalWatcher

	disconnected chan struct{}
	signalOnce   sync.Once
}

// NewConn prepares a connection to device. Nothing is opened until Open.
func NewConn(device string, backend Backend, log *zap.Logger, opts ...Option) (*Conn, error) {
	if device == "" {
		return nil, fmt.Errorf("%w: empty device path", ErrInvalidConfig)
	}
	if _, err := ParseBackend(string(backend)); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{
		device:       device,
		backend:      backend,
		opts:         opts,
		log:          log.With(zap.String("device", device), zap.String("backend", string(backend))),
		disconnected: make(chan struct{}),
	}, nil
}

// Device returns the device path
func (c *Conn) Device() string {
	return c.device
}

// Open opens the device at the given baud rate
func (c *Conn) Open(ctx context.Context, baud int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrPortClosed
	}
	if c.p != nil {
		return ErrAlreadyOpen
	}

	opts := append(append([]Option{}, c.opts...), WithBaudRate(baud))

	var (
		p   Port
		err error
	)
	switch c.backend {
	case BackendPortable:
		p, err = OpenPortable(c.device, opts...)
	default:
		p, err = Open(c.device, opts...)
	}
	if err != nil {
		return err
	}
	c.p = p

	w, err := watchRemoval(c.device, func(err error) {
		c.log.Warn("device watcher error", zap.Error(err))
	})
	if err != nil {
		// Without a watcher, disconnects still surface as read errors or EOF.
		c.log.Warn("device removal watch unavailable", zap.Error(err))
		return nil
	}
	c.watcher = w
	go c.forward(w)

	c.log.Debug("port opened", zap.Int("baud", baud))
	return nil
}

func (c *Conn) forward(w *removalWatcher) {
	select {
	case <-w.Gone():
		c.log.Info("device removed")
		c.signalOnce.Do(func() { close(c.disconnected) })
	case <-w.done:
	}
}

// Reader returns the readable endpoint, or nil if the port is not open
func (c *Conn) Reader() io.Reader {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.p == nil {
		return nil
	}
	return c.p
}

// Writer returns the writable endpoint, or nil if the port is not open
func (c *Conn) Writer() io.Writer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.p == nil {
		return nil
	}
	return c.p
}

// Disconnected is closed when the device disappears
func (c *Conn) Disconnected() <-chan struct{} {
	return c.disconnected
}

// Close closes the port and stops watching the device
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrPortClosed
	}
	c.closed = true

	if c.watcher != nil {
		c.watcher.stop()
		c.watcher = nil
	}
	if c.p == nil {
		return nil
	}
	err := c.p.Close()
	c.p = nil
	c.log.Debug("port closed")
	return err
}
