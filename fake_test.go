package splitflap

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

var errFakeClosed = errors.New("fake connection closed")

// readStep is one scripted result for fakeConn's reader
type readStep struct {
	data []byte
	err  error
}

// fakeConn is an in-memory Connection. Reads are served from a channel of
// scripted steps; closing the channel ends the stream with io.EOF.
type fakeConn struct {
	openErr  error
	noReader bool
	noWriter bool

	steps chan readStep
	// onRead runs at the start of every Read
	onRead func()

	mu         sync.Mutex
	openedAt   time.Time
	writes     [][]byte
	writeTimes []time.Time
	writeErr   func(p []byte) error
	closeCalls int

	closed    chan struct{}
	closeOnce sync.Once
	gone      chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		steps:  make(chan readStep, 64),
		closed: make(chan struct{}),
		gone:   make(chan struct{}),
	}
}

// script queues chunks and ends the stream
func (f *fakeConn) script(chunks ...[]byte) *fakeConn {
	for _, c := range chunks {
		f.steps <- readStep{data: c}
	}
	close(f.steps)
	return f
}

func (f *fakeConn) Open(ctx context.Context, baud int) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.mu.Lock()
	f.openedAt = time.Now()
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Reader() io.Reader {
	if f.noReader {
		return nil
	}
	return fakeReader{f}
}

func (f *fakeConn) Writer() io.Writer {
	if f.noWriter {
		return nil
	}
	return fakeWriter{f}
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closeCalls++
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) Disconnected() <-chan struct{} {
	return f.gone
}

func (f *fakeConn) disconnect() {
	close(f.gone)
}

func (f *fakeConn) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

type fakeReader struct{ f *fakeConn }

func (r fakeReader) Read(p []byte) (int, error) {
	if r.f.onRead != nil {
		r.f.onRead()
	}
	select {
	case step, ok := <-r.f.steps:
		if !ok {
			return 0, io.EOF
		}
		return copy(p, step.data), step.err
	case <-r.f.closed:
		return 0, errFakeClosed
	}
}

type fakeWriter struct{ f *fakeConn }

func (w fakeWriter) Write(p []byte) (int, error) {
	w.f.mu.Lock()
	defer w.f.mu.Unlock()
	if w.f.isClosed() {
		return 0, errFakeClosed
	}
	if w.f.writeErr != nil {
		if err := w.f.writeErr(p); err != nil {
			return 0, err
		}
	}
	w.f.writes = append(w.f.writes, append([]byte(nil), p...))
	w.f.writeTimes = append(w.f.writeTimes, time.Now())
	return len(p), nil
}

// recordingCore collects every chunk it is handed
type recordingCore struct {
	mu     sync.Mutex
	chunks [][]byte
	onData func(chunk []byte)
}

func (c *recordingCore) OnReceivedData(chunk []byte) {
	c.mu.Lock()
	c.chunks = append(c.chunks, chunk)
	c.mu.Unlock()
	if c.onData != nil {
		c.onData(chunk)
	}
}

func (c *recordingCore) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.chunks))
	copy(out, c.chunks)
	return out
}

// recordingObserver counts driver events
type recordingObserver struct {
	mu          sync.Mutex
	transitions []State
	chunks      int
	sent        int
	dropped     int
	faults      []error

	// onState runs before a transition is recorded
	onState func(to State)
}

func (o *recordingObserver) StateChanged(from, to State) {
	if o.onState != nil {
		o.onState(to)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, to)
}

func (o *recordingObserver) ChunkReceived(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.chunks++
}

func (o *recordingObserver) PacketSent(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent++
}

func (o *recordingObserver) PacketDropped(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

func (o *recordingObserver) Fault(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.faults = append(o.faults, err)
}

func (o *recordingObserver) states() []State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]State(nil), o.transitions...)
}
