/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/internal/logging"
	"github.com/allbin/go-splitflap/internal/metrics"
	"github.com/allbin/go-splitflap/port"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "splitflap",
	Short: "Talk to a split-flap display over its serial link",
	Long: `splitflap opens the serial link to a split-flap display, waits for the
board to come out of reset, sends the handshake preamble and then streams
bytes both ways.

Settings are read from flags, SPLITFLAP_* environment variables and a config
file ($HOME/.splitflap.yaml by default):

  port: /dev/ttyUSB0
  backend: termios
  baud: 230400
  settle_delay: 500ms
  log:
    level: debug
    outputs: [stderr, /var/log/splitflap.log]
  metrics:
    addr: :9102`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.splitflap.yaml)")
	pf.StringP("port", "p", "", "serial device of the display, e.g. /dev/ttyUSB0")
	pf.String("backend", string(port.BackendTermios), "serial backend: termios, bugst")
	pf.IntP("baud", "b", splitflap.DefaultBaudRate, "baud rate")
	pf.Duration("settle-delay", splitflap.DefaultSettleDelay, "wait after opening before the handshake")
	pf.Duration("read-poll", 200*time.Millisecond, "read poll interval of the port")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console, json")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")

	bind := map[string]string{
		"port":         "port",
		"backend":      "backend",
		"baud":         "baud",
		"settle_delay": "settle-delay",
		"read_poll":    "read-poll",
		"log.level":    "log-level",
		"log.format":   "log-format",
		"metrics.addr": "metrics-addr",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".splitflap")
	}

	viper.SetEnvPrefix("splitflap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// session bundles what every streaming command needs
type session struct {
	device  string
	baud    int
	log     *zap.Logger
	conn    *port.Conn
	metrics *metrics.Collector
}

func newLogger(quietConsole bool) (*zap.Logger, error) {
	c := logging.DefaultConfig()
	c.Level = viper.GetString("log.level")
	c.Format = viper.GetString("log.format")
	c.Development = viper.GetBool("log.development")
	if viper.IsSet("log.outputs") {
		c.Outputs = viper.GetStringSlice("log.outputs")
	}
	c.Rotation = logging.Rotation{
		Enable:     viper.GetBool("log.rotation.enable"),
		MaxSizeMB:  viper.GetInt("log.rotation.max_size_mb"),
		MaxBackups: viper.GetInt("log.rotation.max_backups"),
		MaxAgeDays: viper.GetInt("log.rotation.max_age_days"),
		Compress:   viper.GetBool("log.rotation.compress"),
	}
	// The TUI owns the terminal; keep console outputs out of it
	if quietConsole {
		files := c.Outputs[:0]
		for _, out := range c.Outputs {
			if out != "stdout" && out != "stderr" {
				files = append(files, out)
			}
		}
		if len(files) == 0 {
			return zap.NewNop(), nil
		}
		c.Outputs = files
	}
	return logging.New(c)
}

func newSession(quietConsole bool) (*session, error) {
	device := viper.GetString("port")
	if device == "" {
		return nil, errors.New("no port given; use --port or set port in the config file")
	}
	backend, err := port.ParseBackend(viper.GetString("backend"))
	if err != nil {
		return nil, err
	}

	log, err := newLogger(quietConsole)
	if err != nil {
		return nil, err
	}

	conn, err := port.NewConn(device, backend, log, port.WithReadTimeout(viper.GetDuration("read_poll")))
	if err != nil {
		return nil, err
	}

	return &session{
		device:  device,
		baud:    viper.GetInt("baud"),
		log:     log,
		conn:    conn,
		metrics: metrics.New(device),
	}, nil
}

// driverOptions are the options shared by all commands; extra observers are
// fanned out together with the metrics collector
func (s *session) driverOptions(observers ...splitflap.Observer) []splitflap.Option {
	return []splitflap.Option{
		splitflap.WithBaudRate(s.baud),
		splitflap.WithSettleDelay(viper.GetDuration("settle_delay")),
		splitflap.WithLogger(s.log),
		splitflap.WithObserver(splitflap.MultiObserver(append([]splitflap.Observer{s.metrics}, observers...)...)),
	}
}

// serveMetrics exposes the collector until ctx is done
func (s *session) serveMetrics(ctx context.Context) {
	addr := viper.GetString("metrics.addr")
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		s.log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// streamingSignal closes ready when the driver starts streaming and
// handshaken once the first packet, the preamble, is on the wire
type streamingSignal struct {
	ready      chan struct{}
	handshaken chan struct{}
	sentOnce   sync.Once
}

func newStreamingSignal() *streamingSignal {
	return &streamingSignal{
		ready:      make(chan struct{}),
		handshaken: make(chan struct{}),
	}
}

func (s *streamingSignal) StateChanged(from, to splitflap.State) {
	if to == splitflap.StateStreaming {
		close(s.ready)
	}
}

func (s *streamingSignal) PacketSent(n int) {
	s.sentOnce.Do(func() { close(s.handshaken) })
}

func (s *streamingSignal) ChunkReceived(n int) {}
func (s *streamingSignal) PacketDropped(n int) {}
func (s *streamingSignal) Fault(err error)     {}
