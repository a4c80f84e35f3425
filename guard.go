package splitflap

import (
	"sync"

	"go.uber.org/atomic"
)

// connectionGuard owns the connection handle and the availability flag.
// Availability starts true and is cleared exactly once; nothing sets it back.
type connectionGuard struct {
	available *atomic.Bool
	once      sync.Once
	done      chan struct{}

	mu   sync.Mutex
	conn Connection
}

// newConnectionGuard takes ownership of conn and subscribes to its disconnect
// notification. onDisconnect receives the handle the guard gave up.
func newConnectionGuard(conn Connection, onDisconnect func(Connection)) *connectionGuard {
	g := &connectionGuard{
		available: atomic.NewBool(true),
		done:      make(chan struct{}),
		conn:      conn,
	}
	go g.subscribe(conn.Disconnected(), onDisconnect)
	return g
}

func (g *connectionGuard) subscribe(signal <-chan struct{}, onDisconnect func(Connection)) {
	select {
	case <-signal:
		if c, ok := g.invalidate(); ok && onDisconnect != nil {
			onDisconnect(c)
		}
	case <-g.done:
	}
}

func (g *connectionGuard) isAvailable() bool {
	return g.available.Load()
}

// current returns the owned connection, or nil once invalidated
func (g *connectionGuard) current() Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn
}

// invalidate marks the guard unavailable and gives up the connection handle.
// Only the first call has an effect; it alone gets ok == true.
func (g *connectionGuard) invalidate() (conn Connection, ok bool) {
	g.once.Do(func() {
		g.available.Store(false)

		g.mu.Lock()
		conn, g.conn = g.conn, nil
		g.mu.Unlock()

		close(g.done)
		ok = true
	})
	return conn, ok
}

// invalidated is closed by the first invalidate
func (g *connectionGuard) invalidated() <-chan struct{} {
	return g.done
}
