package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sonarexport/pkg/observability"
	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

// Progress messages written before each fetch stage.
const (
	msgFetchIssues       = "Fetching issues from SonarQube..."
	msgFetchDuplications = "Fetching duplications from SonarQube..."
	msgFetchCoverage     = "Fetching coverage from SonarQube..."
)

// Source is the subset of the SonarQube API a Collector reads from.
type Source interface {
	DuplicationSource
	SearchIssues(ctx context.Context, projectKey string) ([]sonar.Issue, error)
	ComponentTree(ctx context.Context, projectKey string, metricKeys []string) ([]sonar.Component, error)
}

// Options selects what a collection run fetches.
type Options struct {
	ProjectKey   string
	Duplications bool
	Coverage     bool
}

// Collector runs the fetch and transform stage of an export.
type Collector struct {
	source   Source
	tracer   trace.Tracer
	logger   *slog.Logger
	metrics  *observability.ReportMetrics
	progress io.Writer
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) CollectorOption {
	return func(c *Collector) { c.tracer = tracer }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) { c.logger = logger }
}

// WithMetrics records report statistics into m.
func WithMetrics(m *observability.ReportMetrics) CollectorOption {
	return func(c *Collector) { c.metrics = m }
}

// WithProgress writes stage progress messages to w. A nil w silences them.
func WithProgress(w io.Writer) CollectorOption {
	return func(c *Collector) {
		if w == nil {
			w = io.Discard
		}

		c.progress = w
	}
}

// NewCollector creates a Collector reading from source.
func NewCollector(source Source, opts ...CollectorOption) *Collector {
	c := &Collector{
		source:   source,
		tracer:   nooptrace.NewTracerProvider().Tracer(""),
		logger:   slog.New(slog.DiscardHandler),
		progress: io.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect fetches issues and, when enabled, duplications and coverage, then
// builds the report. Stages run one after another and the first error aborts
// the run without a partial report.
func (c *Collector) Collect(ctx context.Context, opts Options) (*Report, error) {
	ctx, span := c.tracer.Start(ctx, "report.Collect")
	defer span.End()

	span.SetAttributes(
		attribute.String("sonar.project", opts.ProjectKey),
		attribute.Bool("report.duplications", opts.Duplications),
		attribute.Bool("report.coverage", opts.Coverage),
	)

	start := time.Now()

	rep, err := c.collect(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect failed")

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("report.issues", len(rep.Issues)),
		attribute.Int("report.duplicated_files", len(rep.Duplications)),
		attribute.Int("report.coverage_gaps", len(rep.Coverage)),
	)

	c.metrics.RecordReport(ctx, Stats(rep, time.Since(start)))

	c.logger.InfoContext(ctx, "report collected",
		slog.Int("issues", len(rep.Issues)),
		slog.Int("files_with_issues", len(rep.IssuesByFile())),
		slog.Int("duplicated_files", len(rep.Duplications)),
		slog.Int("coverage_gaps", len(rep.Coverage)),
		slog.Duration("duration", time.Since(start)),
	)

	return rep, nil
}

func (c *Collector) collect(ctx context.Context, opts Options) (*Report, error) {
	rep := &Report{}

	c.announce(msgFetchIssues)

	raws, err := c.source.SearchIssues(ctx, opts.ProjectKey)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}

	rep.Issues = NormalizeIssues(raws)

	if opts.Duplications {
		c.announce(msgFetchDuplications)

		rep.Duplications, err = c.duplications(ctx, opts.ProjectKey)
		if err != nil {
			return nil, fmt.Errorf("fetch duplications: %w", err)
		}
	}

	if opts.Coverage {
		c.announce(msgFetchCoverage)

		rep.Coverage, err = c.coverage(ctx, opts.ProjectKey)
		if err != nil {
			return nil, fmt.Errorf("fetch coverage: %w", err)
		}
	}

	return rep, nil
}

func (c *Collector) duplications(ctx context.Context, projectKey string) ([]DuplicationEntry, error) {
	components, err := c.source.ComponentTree(ctx, projectKey, []string{sonar.MetricDuplicatedLinesDensity})
	if err != nil {
		return nil, err
	}

	candidates, err := DuplicationCandidates(components)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "duplication candidates",
		slog.Int("files", len(components)),
		slog.Int("candidates", len(candidates)),
	)

	return NewResolver(c.source, c.logger).Resolve(ctx, candidates)
}

func (c *Collector) coverage(ctx context.Context, projectKey string) ([]CoverageEntry, error) {
	components, err := c.source.ComponentTree(ctx, projectKey, sonar.CoverageMetrics)
	if err != nil {
		return nil, err
	}

	return CoverageFromComponents(components)
}

func (c *Collector) announce(msg string) {
	fmt.Fprintln(c.progress, msg)
}

// Stats summarises rep for report metrics.
func Stats(rep *Report, duration time.Duration) observability.ReportStats {
	type key struct {
		severity Severity
		scope    Scope
	}

	counts := make(map[key]int64)

	var order []key

	for _, issue := range rep.Issues {
		k := key{severity: issue.Severity, scope: issue.Scope}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}

		counts[k]++
	}

	issues := make([]observability.IssueCount, 0, len(order))
	for _, k := range order {
		issues = append(issues, observability.IssueCount{
			Severity: string(k.severity),
			Scope:    string(k.scope),
			Count:    counts[k],
		})
	}

	return observability.ReportStats{
		Issues:          issues,
		DuplicatedFiles: len(rep.Duplications),
		CoverageGaps:    len(rep.Coverage),
		Duration:        duration,
	}
}
