package splitflap

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PreambleLength is the number of zero bytes in the handshake preamble
const PreambleLength = 8

// The device treats a run of zero bytes as a framing reset, whatever line
// noise the reset left behind.
var handshakePreamble [PreambleLength]byte

// settle waits out the configured settle delay after open
func (d *Driver) settle(ctx context.Context) error {
	if d.cfg.SettleDelay <= 0 {
		return nil
	}

	t := time.NewTimer(d.cfg.SettleDelay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-d.guard.invalidated():
		return ErrUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendHandshake puts the preamble first in line on the write channel and
// returns without waiting for it to reach the wire.
func (d *Driver) sendHandshake() {
	send := d.writer.claim()
	go func() {
		preamble := handshakePreamble
		d.log.Debug("sending handshake", zap.String("bytes", hex.EncodeToString(preamble[:])))

		sent, err := send(preamble[:])
		switch {
		case err != nil && d.guard.isAvailable():
			d.fail(fmt.Errorf("%w: handshake: %v", ErrWriteFailure, err))
		case sent:
			d.obs.PacketSent(len(preamble))
		}
	}()
}
