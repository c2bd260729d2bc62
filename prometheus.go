package again

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusConfig is a config of the Prometheus metrics provided by executors.
//
// An instance can be created only by the [Prometheus] function. The zero value is invalid.
type PrometheusConfig struct {
	// Namespace of the metrics.
	Namespace string
	// Subsystem of the metrics.
	Subsystem string
	// Options for the attempts counter.
	Attempts prometheus.CounterOpts
	// Options for the failed attempts counter.
	AttemptErrors prometheus.CounterOpts
	// Options for the attempt duration histogram.
	AttemptDuration prometheus.HistogramOpts
	// Options for the backoff histogram.
	Backoff prometheus.HistogramOpts
	// Options for the outcomes counter, partitioned by status.
	Outcomes prometheus.CounterOpts
	// Options for the sequence duration histogram.
	SequenceDuration prometheus.HistogramOpts

	registerer prometheus.Registerer
	once       sync.Once
	m          *metrics
}

// Prometheus returns a [PrometheusConfig] with the provided registerer. If registerer is nil,
// metrics will not be registered. Many default parameters can be configured by passing
// configuration functions.
func Prometheus(
	registerer prometheus.Registerer,
	configFuncs ...func(c *PrometheusConfig),
) *PrometheusConfig {
	const (
		namespace = "again"
		subsystem = ""
	)

	c := PrometheusConfig{
		registerer: registerer,
		Namespace:  namespace,
		Subsystem:  subsystem,
		Attempts: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attempts",
			Help:      "Number of attempts made",
		},
		AttemptErrors: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attempt_errors",
			Help:      "Number of attempts that failed",
		},
		AttemptDuration: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attempt_duration_seconds",
			Help:      "Duration of a single attempt",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		Backoff: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backoff_seconds",
			Help:      "Wait scheduled between attempts",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		Outcomes: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outcomes",
			Help:      "Number of finished sequences",
		},
		SequenceDuration: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sequence_duration_seconds",
			Help:      "Duration of a whole retry sequence",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		},
	}

	for _, cf := range configFuncs {
		if cf != nil {
			cf(&c)
		}
	}

	return &c
}

func (c *PrometheusConfig) metrics() *metrics {
	c.once.Do(func() {
		m := metrics{
			attempts:         prometheus.NewCounter(c.Attempts),
			attemptErrors:    prometheus.NewCounter(c.AttemptErrors),
			attemptDuration:  prometheus.NewHistogram(c.AttemptDuration),
			backoff:          prometheus.NewHistogram(c.Backoff),
			outcomes:         prometheus.NewCounterVec(c.Outcomes, []string{"status"}),
			sequenceDuration: prometheus.NewHistogram(c.SequenceDuration),
		}

		if c.registerer != nil {
			c.registerer.MustRegister(
				m.attempts,
				m.attemptErrors,
				m.attemptDuration,
				m.backoff,
				m.outcomes,
				m.sequenceDuration,
			)
		}

		c.m = &m
	})
	return c.m
}

type metrics struct {
	attempts         prometheus.Counter
	attemptErrors    prometheus.Counter
	attemptDuration  prometheus.Histogram
	backoff          prometheus.Histogram
	outcomes         *prometheus.CounterVec
	sequenceDuration prometheus.Histogram
}
