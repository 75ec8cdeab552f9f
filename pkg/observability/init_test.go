package observability_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sonarexport/pkg/observability"
)

func TestDefaultConfig_HasSensibleDefaults(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "sonarexport", cfg.ServiceName)
	assert.Equal(t, 5, cfg.ShutdownTimeoutSec)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Empty(t, cfg.OutputMode)
	assert.Nil(t, cfg.LogOutput)
}

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.NotNil(t, providers.Shutdown)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_NoopSpanIsValid(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	ctx, span := providers.Tracer.Start(context.Background(), "collect")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
}

func TestInit_ShutdownIdempotent(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerWritesToConfiguredOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogOutput = &buf
	cfg.OutputMode = "agent"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.InfoContext(context.Background(), "init test")

	assert.Contains(t, buf.String(), `"msg":"init test"`)
	assert.Contains(t, buf.String(), `"mode":"agent"`)
}

func TestInit_MetricsTextfileWrittenOnShutdown(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sonarexport.prom")

	cfg := observability.DefaultConfig()
	cfg.MetricsTextfile = path

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	api, err := observability.NewAPIMetrics(providers.Meter)
	require.NoError(t, err)

	api.RecordRequest(context.Background(), "/api/issues/search", observability.StatusOK, 120*time.Millisecond)

	_, statErr := os.Stat(path)
	require.ErrorIs(t, statErr, os.ErrNotExist, "textfile must not exist before shutdown")

	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, "target_info")
	assert.Contains(t, body, "sonarexport")
	assert.Contains(t, body, "/api/issues/search")
}

func TestInit_MetricsTextfileUnwritable(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "missing-dir", "sonarexport.prom")

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	err = providers.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics textfile")
}

func TestBuildResource_IncludesReportMode(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.OutputMode = "readable"
	cfg.ServiceVersion = "1.2.3"

	res, err := observability.ProbeBuildResource(cfg)
	require.NoError(t, err)

	found := false

	for _, attr := range res.Attributes() {
		if string(attr.Key) == "report.mode" {
			assert.Equal(t, "readable", attr.Value.AsString())

			found = true
		}
	}

	assert.True(t, found, "report.mode attribute not found in resource")
}

func TestSampler_AlwaysOff(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")

	assert.False(t, observability.ProbeSamplerSpan(observability.DefaultConfig()))
}

func TestSampler_TraceIDRatio(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "traceidratio")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.0")

	assert.True(t, observability.ProbeSamplerSpan(observability.DefaultConfig()))
}

func TestSampler_ParentBasedAlwaysOff(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "parentbased_always_off")

	assert.False(t, observability.ProbeSamplerSpan(observability.DefaultConfig()))
}

func TestSampler_ConfigSampleRatio(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "")

	cfg := observability.DefaultConfig()
	cfg.SampleRatio = 1.0

	assert.True(t, observability.ProbeSamplerSpan(cfg))
}

func TestSampler_DefaultSamples(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "")

	assert.True(t, observability.ProbeSamplerSpan(observability.DefaultConfig()))
}
