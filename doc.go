// Package splitflap is the serial transport driver for a split-flap display.
//
// The driver owns one connection to the display for one session. It opens the
// link, waits for the device to settle after the reset that opening the port
// triggers, sends a short handshake preamble and then streams: every chunk read
// from the link goes to a ProtocolCore, and every packet the core asks to send
// goes out verbatim. The driver does not frame, decode, retry or reconnect.
//
// # Basic Usage
//
// Wrap a serial device in a Connection (see the port package) and hand the
// driver a factory for the protocol core. The factory receives the driver's
// Send method as the core's outbound-packet callback:
//
//	conn, err := port.NewConn("/dev/ttyUSB0", port.BackendTermios, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d, err := splitflap.New(conn, func(send splitflap.SendFunc) splitflap.ProtocolCore {
//	    return core.New(send, onMessage)
//	}, splitflap.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	if err := d.Run(ctx); err != nil {
//	    log.Printf("session ended: %v", err)
//	}
//
// # Session Lifecycle
//
// A driver moves through Disconnected, Opening, Handshaking and Streaming, and
// ends in Disconnected (end of stream, disconnect notification, Close) or
// Faulted (open, read or write failure). Neither end state can be left. After
// the session ends IsAvailable reports false for good and Run returns
// ErrUnavailable; obtain a new Connection and a new Driver to reconnect.
//
// The handshake is exactly eight zero bytes, written once, after the settle
// delay (500ms by default). It is queued ahead of any packet the core sends
// but Run does not wait for it to complete.
//
// # Writes
//
// Send writes one packet at a time and never buffers. Packets sent before the
// session is streaming or after it has ended are dropped without error, so a
// caller that needs to know should check IsAvailable first. A failed write
// ends the session; the packet is not replayed and the fault is returned by
// Run and Err rather than to the caller of Send.
//
// # Error Handling
//
// Use errors.Is() with the sentinel errors:
//
//	if errors.Is(err, splitflap.ErrOpenFailure) {
//	    // port missing, busy or baud rate unsupported
//	}
//
// # Default Configuration
//
//   - BaudRate: 230400
//   - SettleDelay: 500ms
//   - ReadBufferSize: 4096
//   - Logger: zap.NewNop()
package splitflap
