package provenance

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Stats totals the cache counters.
type Stats struct {
	Hits             int64 `json:"hits" yaml:"hits"`
	Misses           int64 `json:"misses" yaml:"misses"`
	Resolutions      int64 `json:"resolutions" yaml:"resolutions"`
	ResolutionErrors int64 `json:"resolutionErrors" yaml:"resolutionErrors"`
	Evictions        int64 `json:"evictions" yaml:"evictions"`
}

// NewStatsProvider returns a meter provider whose cache counters can be read
// back with CollectStats through the returned reader.
func NewStatsProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

// CollectStats reads the current cache counter totals from reader.
func CollectStats(ctx context.Context, reader sdkmetric.Reader) (Stats, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != MeterName {
			continue
		}
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case MetricLookups:
					if attrString(dp.Attributes, "outcome") == "hit" {
						stats.Hits += dp.Value
					} else {
						stats.Misses += dp.Value
					}
				case MetricResolutions:
					stats.Resolutions += dp.Value
					if attrString(dp.Attributes, "status") == "error" {
						stats.ResolutionErrors += dp.Value
					}
				case MetricEvictions:
					stats.Evictions += dp.Value
				}
			}
		}
	}
	return stats, nil
}

func attrString(set attribute.Set, key string) string {
	v, ok := set.Value(attribute.Key(key))
	if !ok {
		return ""
	}
	return v.AsString()
}
