package splitflap

import (
	"go.uber.org/zap"
)

// fail is the single path for open, read and write faults. It closes the
// connection, invalidates the guard and drops the write capability. The
// first cause is kept for Err. It never retries or reconnects.
func (d *Driver) fail(cause error) {
	first := false
	d.faultOnce.Do(func() {
		d.fault.Store(cause)
		first = true
	})

	if c, ok := d.guard.invalidate(); ok {
		d.closeConn(c)
	}
	d.writer.release()
	d.moveTo(StateFaulted)

	if first {
		d.log.Error("connection faulted", zap.Error(cause))
		d.obs.Fault(cause)
	}
}

// onDisconnect handles a connection given up by the guard without a fault:
// the disconnect signal, a caller Close, or an orderly end of stream.
func (d *Driver) onDisconnect(c Connection) {
	d.log.Info("connection disconnected")
	d.closeConn(c)
	d.writer.release()
	d.moveTo(StateDisconnected)
}

// closeConn closes c, best effort
func (d *Driver) closeConn(c Connection) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		d.log.Debug("close connection", zap.Error(err))
	}
}
