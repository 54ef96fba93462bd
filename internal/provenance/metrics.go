package provenance

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes the cache instruments.
const MeterName = "lineowner.provenance"

// Instrument names.
const (
	MetricLookups     = "provenance_cache_lookups_total"
	MetricResolutions = "provenance_resolutions_total"
	MetricEvictions   = "provenance_cache_evictions_total"
)

// cacheMetrics holds the counters one Cache records into.
type cacheMetrics struct {
	lookups     metric.Int64Counter
	resolutions metric.Int64Counter
	evictions   metric.Int64Counter
}

// newCacheMetrics creates the instruments on provider, or on the global
// provider when provider is nil.
func newCacheMetrics(provider metric.MeterProvider) (*cacheMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(MeterName)

	lookups, err := meter.Int64Counter(MetricLookups,
		metric.WithDescription("Cache lookups by slot and outcome"),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter(MetricResolutions,
		metric.WithDescription("Resolutions that reached git, by slot and status"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(MetricEvictions,
		metric.WithDescription("Entries dropped from the cache, by reason"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{lookups: lookups, resolutions: resolutions, evictions: evictions}, nil
}

func (m *cacheMetrics) lookup(ctx context.Context, slot string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("slot", slot),
		attribute.String("outcome", outcome),
	))
}

func (m *cacheMetrics) resolution(ctx context.Context, slot string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("slot", slot),
		attribute.String("status", status),
	))
}

func (m *cacheMetrics) evicted(reason string, n int) {
	if n == 0 {
		return
	}
	m.evictions.Add(context.Background(), int64(n), metric.WithAttributes(
		attribute.String("reason", reason),
	))
}
