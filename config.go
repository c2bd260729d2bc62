package again

import (
	"log/slog"
)

type Option[V any] = func(*config[V])

// WithSink sets the sink receiving the events of every sequence run by the executor. Use [Tee] to
// send them to several sinks.
func WithSink[V any](sink Sink) Option[V] {
	if sink == nil {
		panic("sink can't be nil")
	}
	return func(c *config[V]) {
		c.sink = sink
	}
}

func WithLogger[V any](logger *slog.Logger) Option[V] {
	if logger == nil {
		panic("logger can't be nil")
	}
	return func(c *config[V]) {
		c.logger = logger
	}
}

// WithPrometheus enables metrics. The same config can be shared by several executors, the
// collectors are registered once.
func WithPrometheus[V any](prometheus *PrometheusConfig) Option[V] {
	if prometheus == nil {
		panic("prometheus config can't be nil")
	}
	return func(c *config[V]) {
		c.prometheus = prometheus
	}
}

type config[V any] struct {
	sink       Sink
	logger     *slog.Logger
	prometheus *PrometheusConfig
}

func newConfig[V any](options ...Option[V]) *config[V] {
	options = append([]Option[V]{
		WithSink[V](discard{}),
		WithLogger[V](slog.New(slog.DiscardHandler)),
		WithPrometheus[V](Prometheus(nil)),
	}, options...)

	cfg := config[V]{}
	for _, opt := range options {
		opt(&cfg)
	}

	return &cfg
}
