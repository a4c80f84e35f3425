package splitflap

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// readLoop pulls chunks from r until end of stream, a fault, or invalidation,
// handing each non-empty chunk to the protocol core before reading the next.
// The core's processing time is the only back-pressure; nothing is read ahead.
// Leaving the loop releases the read capability and the write capability.
func (d *Driver) readLoop(r io.Reader) error {
	if !d.reading.CompareAndSwap(false, true) {
		return ErrCapabilityHeld
	}
	defer func() {
		d.log.Debug("releasing reader")
		d.reading.Store(false)
		if d.writer.release() {
			d.log.Debug("releasing writer")
		}
	}()

	buf := make([]byte, d.cfg.ReadBufferSize)
	for {
		n, err := r.Read(buf)
		if !d.guard.isAvailable() {
			return nil
		}
		if n > 0 {
			d.dispatch(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.log.Info("end of stream")
				return nil
			}
			if !d.guard.isAvailable() {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrReadFailure, err)
		}
	}
}

func (d *Driver) dispatch(b []byte) {
	chunk := bytes.Clone(b)
	if ce := d.log.Check(zap.DebugLevel, "received chunk"); ce != nil {
		ce.Write(zap.Int("len", len(chunk)), zap.String("bytes", hex.EncodeToString(chunk)))
	}
	d.obs.ChunkReceived(len(chunk))
	d.core.OnReceivedData(chunk)
}
