// Package prometheus provides the metric registry and the instrument set of
// the estimation pipeline.  Components record through the Metrics type;
// direct use of client_golang stays confined to this package and the
// exported instrument fields.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// namespace prefixes every metric name.
const namespace = "thermocancel"

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	// EnableProcessMetrics adds the standard process collector (CPU, RSS,
	// file descriptors).
	EnableProcessMetrics bool

	// EnableGoMetrics adds the Go runtime collector (goroutines, GC, heap).
	EnableGoMetrics bool
}

// Collector owns an isolated metric registry so tests and embedders never
// collide on the process-global default registry.
type Collector struct {
	registry *prometheus.Registry
	logger   logging.Logger
}

// NewCollector creates a Collector with its own registry.
func NewCollector(cfg CollectorConfig, logger logging.Logger) (*Collector, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	registry := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot register process collector")
		}
	}
	if cfg.EnableGoMetrics {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot register Go runtime collector")
		}
	}

	return &Collector{registry: registry, logger: logger.Named("metrics")}, nil
}

// Registry exposes the underlying registry for instrument registration.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler returns the scrape endpoint handler for embedders that serve HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
