package splitflap

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// writeChannel holds the session's write capability. It carries one packet at
// a time and never buffers; a packet that cannot be written is not replayed.
type writeChannel struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *writeChannel) acquire(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w != nil {
		return ErrCapabilityHeld
	}
	c.w = w
	return nil
}

// release drops the capability, waiting for an in-flight write.
// It reports whether the capability was held.
func (c *writeChannel) release() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	held := c.w != nil
	c.w = nil
	return held
}

// write transmits p. sent is false when no capability is held.
func (c *writeChannel) write(p []byte) (sent bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(p)
}

// claim takes the channel now and hands it to the returned function, which
// performs exactly one write and then lets the next writer in.
func (c *writeChannel) claim() func(p []byte) (bool, error) {
	c.mu.Lock()
	return func(p []byte) (bool, error) {
		defer c.mu.Unlock()
		return c.writeLocked(p)
	}
}

func (c *writeChannel) writeLocked(p []byte) (bool, error) {
	if c.w == nil {
		return false, nil
	}
	n, err := c.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err == nil, err
}

// Send transmits one framed packet verbatim. It is the callback handed to the
// ProtocolCore. Packets sent outside the streaming state, or after the
// connection became unavailable, are dropped silently; a failed write ends
// the session. Callers must not issue a second Send before the first returns.
func (d *Driver) Send(packet []byte) {
	if d.State() != StateStreaming || !d.guard.isAvailable() {
		d.drop(packet)
		return
	}

	sent, err := d.writer.write(packet)
	if err != nil {
		if !d.guard.isAvailable() {
			d.drop(packet)
			return
		}
		d.fail(fmt.Errorf("%w: %v", ErrWriteFailure, err))
		return
	}
	if !sent {
		d.drop(packet)
		return
	}

	if ce := d.log.Check(zap.DebugLevel, "packet sent"); ce != nil {
		ce.Write(zap.Int("len", len(packet)), zap.String("bytes", hex.EncodeToString(packet)))
	}
	d.obs.PacketSent(len(packet))
}

func (d *Driver) drop(packet []byte) {
	d.log.Debug("packet dropped", zap.Int("len", len(packet)), zap.Stringer("state", d.State()))
	d.obs.PacketDropped(len(packet))
}
