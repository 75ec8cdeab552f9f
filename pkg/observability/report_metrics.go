package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricIssuesTotal          = "sonarexport.report.issues.total"
	metricDuplicatedFilesTotal = "sonarexport.report.duplicated_files.total"
	metricCoverageGapsTotal    = "sonarexport.report.coverage_gaps.total"
	metricRunDuration          = "sonarexport.report.run.duration.seconds"

	attrSeverity = "severity"
	attrScope    = "scope"
)

// ReportMetrics holds OTel instruments describing the content of a report.
type ReportMetrics struct {
	issuesTotal     metric.Int64Counter
	duplicatedFiles metric.Int64Counter
	coverageGaps    metric.Int64Counter
	runDuration     metric.Float64Histogram
}

// IssueCount is the number of issues sharing a severity and scope.
type IssueCount struct {
	Severity string
	Scope    string
	Count    int64
}

// ReportStats summarises one collected report, decoupled from report types.
type ReportStats struct {
	Issues          []IssueCount
	DuplicatedFiles int
	CoverageGaps    int
	Duration        time.Duration
}

// NewReportMetrics creates report metric instruments from the given meter.
func NewReportMetrics(mt metric.Meter) (*ReportMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &ReportMetrics{
		issuesTotal: b.counter(metricIssuesTotal,
			"Open issues exported, by severity and scope", "{issue}"),
		duplicatedFiles: b.counter(metricDuplicatedFilesTotal,
			"Files with resolved duplication blocks", "{file}"),
		coverageGaps: b.counter(metricCoverageGapsTotal,
			"Files below full coverage", "{file}"),
		runDuration: b.histogram(metricRunDuration,
			"Fetch and aggregate duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordReport records the statistics of a collected report.
// Safe to call on a nil receiver (no-op).
func (rm *ReportMetrics) RecordReport(ctx context.Context, stats ReportStats) {
	if rm == nil {
		return
	}

	for _, ic := range stats.Issues {
		rm.issuesTotal.Add(ctx, ic.Count, metric.WithAttributes(
			attribute.String(attrSeverity, ic.Severity),
			attribute.String(attrScope, ic.Scope),
		))
	}

	rm.duplicatedFiles.Add(ctx, int64(stats.DuplicatedFiles))
	rm.coverageGaps.Add(ctx, int64(stats.CoverageGaps))
	rm.runDuration.Record(ctx, stats.Duration.Seconds())
}
