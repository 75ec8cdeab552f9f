package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/sonarexport/pkg/observability"
)

func newManualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestAPIMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	api, err := observability.NewAPIMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	api.RecordRequest(ctx, "/api/issues/search", observability.StatusOK, 100*time.Millisecond)
	api.RecordRequest(ctx, "/api/issues/search", observability.StatusOK, 80*time.Millisecond)
	api.RecordResponseBytes(ctx, "/api/issues/search", 4096)

	rm := collectMetrics(t, reader)

	reqTotal := findMetric(rm, "sonarexport.api.requests.total")
	require.NotNil(t, reqTotal)
	assert.Equal(t, int64(2), sumValue(t, reqTotal))

	require.NotNil(t, findMetric(rm, "sonarexport.api.request.duration.seconds"))
	require.NotNil(t, findMetric(rm, "sonarexport.api.response.bytes"))
	assert.Nil(t, findMetric(rm, "sonarexport.api.errors.total"), "no error recorded yet")
}

func TestAPIMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	api, err := observability.NewAPIMetrics(mp.Meter("test"))
	require.NoError(t, err)

	api.RecordRequest(context.Background(), "/api/duplications/show", observability.StatusError, time.Second)

	errTotal := findMetric(collectMetrics(t, reader), "sonarexport.api.errors.total")
	require.NotNil(t, errTotal)
	assert.Equal(t, int64(1), sumValue(t, errTotal))
}

func TestAPIMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var api *observability.APIMetrics

	assert.NotPanics(t, func() {
		api.RecordRequest(context.Background(), "/x", observability.StatusOK, time.Millisecond)
		api.RecordResponseBytes(context.Background(), "/x", 1)
	})
}

func TestReportMetrics_RecordReport(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	rep, err := observability.NewReportMetrics(mp.Meter("test"))
	require.NoError(t, err)

	rep.RecordReport(context.Background(), observability.ReportStats{
		Issues: []observability.IssueCount{
			{Severity: "MAJOR", Scope: "MAIN", Count: 3},
			{Severity: "MINOR", Scope: "TEST", Count: 2},
		},
		DuplicatedFiles: 4,
		CoverageGaps:    7,
		Duration:        2 * time.Second,
	})

	rm := collectMetrics(t, reader)

	issues := findMetric(rm, "sonarexport.report.issues.total")
	require.NotNil(t, issues)
	assert.Equal(t, int64(5), sumValue(t, issues))

	dups := findMetric(rm, "sonarexport.report.duplicated_files.total")
	require.NotNil(t, dups)
	assert.Equal(t, int64(4), sumValue(t, dups))

	gaps := findMetric(rm, "sonarexport.report.coverage_gaps.total")
	require.NotNil(t, gaps)
	assert.Equal(t, int64(7), sumValue(t, gaps))

	require.NotNil(t, findMetric(rm, "sonarexport.report.run.duration.seconds"))
}

func TestReportMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var rep *observability.ReportMetrics

	assert.NotPanics(t, func() {
		rep.RecordReport(context.Background(), observability.ReportStats{})
	})
}

func TestNewAPIMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	api, err := observability.NewAPIMetrics(providers.Meter)
	require.NoError(t, err)
	assert.NotNil(t, api)

	api.RecordRequest(context.Background(), "/api/issues/search", observability.StatusOK, time.Millisecond)
}
