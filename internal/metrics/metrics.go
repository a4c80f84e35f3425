// Package metrics exposes driver activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	splitflap "github.com/allbin/go-splitflap"
)

const namespace = "splitflap"

var allStates = []splitflap.State{
	splitflap.StateDisconnected,
	splitflap.StateOpening,
	splitflap.StateHandshaking,
	splitflap.StateStreaming,
	splitflap.StateFaulted,
}

// Collector records driver events. It implements splitflap.Observer and owns
// its registry so several collectors can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	chunks        prometheus.Counter
	bytesReceived prometheus.Counter
	packets       prometheus.Counter
	bytesSent     prometheus.Counter
	dropped       prometheus.Counter
	faults        *prometheus.CounterVec
	state         *prometheus.GaugeVec
}

var _ splitflap.Observer = (*Collector)(nil)

// New creates a collector with every metric registered under the given
// device label.
func New(device string) *Collector {
	labels := prometheus.Labels{"device": device}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "read",
			Name:        "chunks_total",
			Help:        "Non-empty chunks forwarded to the protocol core.",
			ConstLabels: labels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "read",
			Name:        "bytes_total",
			Help:        "Bytes forwarded to the protocol core.",
			ConstLabels: labels,
		}),
		packets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "write",
			Name:        "packets_total",
			Help:        "Packets written to the device, handshake included.",
			ConstLabels: labels,
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "write",
			Name:        "bytes_total",
			Help:        "Bytes written to the device.",
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "write",
			Name:        "dropped_total",
			Help:        "Packets dropped because the session was not streaming.",
			ConstLabels: labels,
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "faults_total",
			Help:        "Session faults by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "state",
			Help:        "1 for the driver's current lifecycle state, 0 otherwise.",
			ConstLabels: labels,
		}, []string{"state"}),
	}

	c.registry.MustRegister(c.chunks, c.bytesReceived, c.packets, c.bytesSent, c.dropped, c.faults, c.state)
	c.setState(splitflap.StateDisconnected)
	return c
}

// Registry returns the registry the collector's metrics live in
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) StateChanged(from, to splitflap.State) {
	c.setState(to)
}

func (c *Collector) ChunkReceived(n int) {
	c.chunks.Inc()
	c.bytesReceived.Add(float64(n))
}

func (c *Collector) PacketSent(n int) {
	c.packets.Inc()
	c.bytesSent.Add(float64(n))
}

func (c *Collector) PacketDropped(n int) {
	c.dropped.Inc()
}

func (c *Collector) Fault(err error) {
	c.faults.WithLabelValues(faultKind(err)).Inc()
}

func (c *Collector) setState(to splitflap.State) {
	for _, s := range allStates {
		v := 0.0
		if s == to {
			v = 1
		}
		c.state.WithLabelValues(s.String()).Set(v)
	}
}

func faultKind(err error) string {
	switch {
	case errors.Is(err, splitflap.ErrOpenFailure):
		return "open"
	case errors.Is(err, splitflap.ErrMissingEndpoints):
		return "endpoints"
	case errors.Is(err, splitflap.ErrReadFailure):
		return "read"
	case errors.Is(err, splitflap.ErrWriteFailure):
		return "write"
	default:
		return "other"
	}
}
