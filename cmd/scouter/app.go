package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teenjuna/again"
	"github.com/teenjuna/again/journal"
	"github.com/teenjuna/again/lookup"
)

// app holds what's shared by all commands. It's set up by the root command once flags are parsed.
type app struct {
	out    io.Writer
	errOut io.Writer

	logger     *slog.Logger
	prometheus *again.PrometheusConfig
	journal    *journal.Journal
	lookup     *lookup.Client
	server     *http.Server
}

type options struct {
	config       string
	logLevel     string
	logFormat    string
	metricsAddr  string
	journal      string
	journalLimit int
	baseURL      string
	timeout      time.Duration
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:        out,
		errOut:     errOut,
		logger:     slog.New(slog.DiscardHandler),
		prometheus: again.Prometheus(nil),
	}
}

func (a *app) setup(opts *options) error {
	logger, err := setupLogger(a.errOut, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	a.lookup = lookup.New(opts.baseURL, lookup.WithTimeout(opts.timeout))

	if opts.metricsAddr != "" {
		if err := a.serveMetrics(opts.metricsAddr); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if opts.journal != "" {
		j, err := journal.Open(
			journal.WithFile(opts.journal, false),
			journal.WithLimit(opts.journalLimit),
			journal.WithLogger(a.logger),
		)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		a.journal = j
	}

	return nil
}

func (a *app) serveMetrics(addr string) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.prometheus = again.Prometheus(registry)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	a.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", listener.Addr().String())

	return nil
}

func (a *app) close() error {
	var errs []error
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	return errors.Join(errs...)
}

// sinks returns the sinks every scan reports to, in addition to extra. The returned recorder is
// nil when the journal is disabled.
func (a *app) sinks(scanID string, extra ...again.Sink) (again.Sink, *journal.Recorder) {
	if a.journal == nil {
		return again.Tee(extra...), nil
	}
	recorder := a.journal.Recorder(scanID)
	return again.Tee(append(extra, recorder)...), recorder
}
