package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wolfeidau/jellyweb"

// Metrics holds the instruments recorded by the asset pipeline and the static host.
type Metrics struct {
	// Build metrics
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram
	WorkersBuilt     metric.Int64Counter
	FilesCopied      metric.Int64Counter

	// Host metrics
	ShellRendersTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the process wide Metrics, created from the global meter
// provider on first use. Instruments follow a provider installed later.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = NewMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return metrics
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"jellyweb.assets.builds.total",
		metric.WithDescription("Total number of asset builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"jellyweb.assets.build_errors.total",
		metric.WithDescription("Total number of asset builds that failed"),
		metric.WithUnit("{build}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"jellyweb.assets.build.duration",
		metric.WithDescription("Duration of asset builds"),
		metric.WithUnit("ms"),
	)

	m.WorkersBuilt, _ = meter.Int64Counter(
		"jellyweb.assets.workers.total",
		metric.WithDescription("Total number of worker bundles built"),
		metric.WithUnit("{worker}"),
	)

	m.FilesCopied, _ = meter.Int64Counter(
		"jellyweb.assets.files_copied.total",
		metric.WithDescription("Total number of files emitted by the file loader"),
		metric.WithUnit("{file}"),
	)

	m.ShellRendersTotal, _ = meter.Int64Counter(
		"jellyweb.site.shell_renders.total",
		metric.WithDescription("Total number of page shell renders"),
		metric.WithUnit("{render}"),
	)

	return m
}
