package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Histogram names; provider.go registers bucket views for them.
const (
	MetricSearchDuration  = "cms_search_search_duration_seconds"
	MetricReindexDuration = "cms_search_reindex_duration_seconds"
)

// Metrics holds all OTel metric instruments for cms-search. Nil until InitMetrics runs.
var Metrics *SearchMetrics

// SearchMetrics contains all metric instruments.
type SearchMetrics struct {
	IndexedTotal    metric.Int64Counter
	DeletedTotal    metric.Int64Counter
	ErrorsTotal     metric.Int64Counter
	FallbackTotal   metric.Int64Counter
	ReindexDuration metric.Float64Histogram
	SearchDuration  metric.Float64Histogram
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("cms-search")

	indexedTotal, err := meter.Int64Counter("cms_search_indexed_total",
		metric.WithDescription("Total number of documents indexed"),
	)
	if err != nil {
		return err
	}

	deletedTotal, err := meter.Int64Counter("cms_search_deleted_total",
		metric.WithDescription("Total number of documents removed from the index"),
	)
	if err != nil {
		return err
	}

	errorsTotal, err := meter.Int64Counter("cms_search_errors_total",
		metric.WithDescription("Total number of indexing and search errors"),
	)
	if err != nil {
		return err
	}

	fallbackTotal, err := meter.Int64Counter("cms_search_fallback_total",
		metric.WithDescription("Searches served by the legacy article index after a provider failure"),
	)
	if err != nil {
		return err
	}

	reindexDuration, err := meter.Float64Histogram(MetricReindexDuration,
		metric.WithDescription("Full tenant reindex duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram(MetricSearchDuration,
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &SearchMetrics{
		IndexedTotal:    indexedTotal,
		DeletedTotal:    deletedTotal,
		ErrorsTotal:     errorsTotal,
		FallbackTotal:   fallbackTotal,
		ReindexDuration: reindexDuration,
		SearchDuration:  searchDuration,
	}

	return nil
}

func providerAttr(provider string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("provider", provider))
}

// The Record helpers are safe on a nil receiver so callers need no enabled check.

func (m *SearchMetrics) RecordIndexed(ctx context.Context, provider string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.IndexedTotal.Add(ctx, int64(n), providerAttr(provider))
}

func (m *SearchMetrics) RecordDeleted(ctx context.Context, provider string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DeletedTotal.Add(ctx, int64(n), providerAttr(provider))
}

func (m *SearchMetrics) RecordError(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func (m *SearchMetrics) RecordFallback(ctx context.Context) {
	if m == nil {
		return
	}
	m.FallbackTotal.Add(ctx, 1)
}

func (m *SearchMetrics) RecordSearch(ctx context.Context, provider string, seconds float64) {
	if m == nil {
		return
	}
	m.SearchDuration.Record(ctx, seconds, providerAttr(provider))
}

func (m *SearchMetrics) RecordReindex(ctx context.Context, provider string, seconds float64) {
	if m == nil {
		return
	}
	m.ReindexDuration.Record(ctx, seconds, providerAttr(provider))
}
