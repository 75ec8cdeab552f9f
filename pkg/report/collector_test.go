package report_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

func newFixtureSource() *fakeSource {
	return &fakeSource{
		issues: []sonar.Issue{
			{Component: "p:src/a.go", Line: intPtr(3), Severity: "MAJOR", Rule: "go:S1", Message: "one", Scope: "MAIN"},
			{Component: "p:src/a_test.go", Severity: "MINOR", Rule: "go:S2", Message: "two", Scope: "TEST"},
			{Component: "p:src/b.go", Line: intPtr(8), Severity: "BLOCKER", Rule: "go:S3", Message: "three"},
		},
		components: map[string][]sonar.Component{
			sonar.MetricDuplicatedLinesDensity: {
				{Key: "p:src/a.go", Path: "src/a.go", Measures: []sonar.Measure{measure(sonar.MetricDuplicatedLinesDensity, "0.0")}},
				{Key: "p:src/b.go", Path: "src/b.go", Measures: []sonar.Measure{measure(sonar.MetricDuplicatedLinesDensity, "12.5")}},
			},
			sonar.MetricCoverage: {
				{Key: "p:src/a.go", Path: "src/a.go", Measures: []sonar.Measure{measure(sonar.MetricCoverage, "100.0")}},
				{Key: "p:src/b.go", Path: "src/b.go", Measures: []sonar.Measure{measure(sonar.MetricCoverage, "99.9")}},
			},
		},
		duplications: map[string]*sonar.DuplicationsResponse{
			"p:src/b.go": {
				Duplications: []sonar.Duplication{{Blocks: []sonar.Block{
					{From: 1, Size: 4, Ref: "1"},
					{From: 30, Size: 4, Ref: "2"},
				}}},
				Files: map[string]sonar.DuplicationFile{
					"1": {Name: "src/b.go"},
					"2": {Name: "src/c.go"},
				},
			},
		},
	}
}

func TestCollector_Collect(t *testing.T) {
	t.Parallel()

	src := newFixtureSource()

	var progress bytes.Buffer

	rep, err := report.NewCollector(src, report.WithProgress(&progress)).Collect(context.Background(), report.Options{
		ProjectKey:   "p",
		Duplications: true,
		Coverage:     true,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Fetching issues from SonarQube...\n"+
			"Fetching duplications from SonarQube...\n"+
			"Fetching coverage from SonarQube...\n",
		progress.String())

	require.Len(t, rep.Issues, 3)
	assert.Len(t, rep.MainIssues(), 2)
	assert.Len(t, rep.IssuesByFile(), 3)

	assert.Equal(t, []string{"p:src/b.go"}, src.lookups)
	require.Len(t, rep.Duplications, 1)
	assert.Equal(t, "src/c.go", rep.Duplications[0].Blocks[0].References[0].File)

	require.Len(t, rep.Coverage, 1)
	assert.Equal(t, "src/b.go", rep.Coverage[0].File)

	assert.Equal(t, [][]string{{sonar.MetricDuplicatedLinesDensity}, sonar.CoverageMetrics}, src.trees)
}

func TestCollector_LogsSummary(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, nil))

	_, err := report.NewCollector(newFixtureSource(), report.WithLogger(logger)).Collect(context.Background(), report.Options{
		ProjectKey: "p",
		Coverage:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "report collected")
	assert.Contains(t, logs.String(), "issues=3")
	assert.Contains(t, logs.String(), "files_with_issues=3")
	assert.Contains(t, logs.String(), "coverage_gaps=1")
}

func TestCollector_SkipsDisabledSections(t *testing.T) {
	t.Parallel()

	src := newFixtureSource()

	rep, err := report.NewCollector(src).Collect(context.Background(), report.Options{ProjectKey: "p"})
	require.NoError(t, err)

	assert.Len(t, rep.Issues, 3)
	assert.Empty(t, rep.Duplications)
	assert.Empty(t, rep.Coverage)
	assert.Empty(t, src.trees)
	assert.Empty(t, src.lookups)
}

func TestCollector_ErrorAbortsRun(t *testing.T) {
	t.Parallel()

	errDown := errors.New("server down")

	src := newFixtureSource()
	src.treeErr = errDown

	rep, err := report.NewCollector(src).Collect(context.Background(), report.Options{
		ProjectKey:   "p",
		Duplications: true,
		Coverage:     true,
	})

	require.ErrorIs(t, err, errDown)
	assert.Nil(t, rep)
	assert.Contains(t, err.Error(), "fetch duplications")
}

func TestCollector_MalformedMetricIsFatal(t *testing.T) {
	t.Parallel()

	src := newFixtureSource()
	src.components[sonar.MetricCoverage] = []sonar.Component{
		{Key: "p:x.go", Measures: []sonar.Measure{measure(sonar.MetricCoverage, "oops")}},
	}

	_, err := report.NewCollector(src).Collect(context.Background(), report.Options{ProjectKey: "p", Coverage: true})

	require.ErrorIs(t, err, report.ErrMalformedMetric)
}

func TestStats_CountsBySeverityAndScope(t *testing.T) {
	t.Parallel()

	rep := &report.Report{
		Issues: []report.Issue{
			{Severity: report.SeverityMajor, Scope: report.ScopeMain},
			{Severity: report.SeverityMajor, Scope: report.ScopeMain},
			{Severity: report.SeverityMajor, Scope: report.ScopeTest},
		},
		Coverage: []report.CoverageEntry{{File: "a.go"}},
	}

	stats := report.Stats(rep, 0)

	require.Len(t, stats.Issues, 2)
	assert.Equal(t, int64(2), stats.Issues[0].Count)
	assert.Equal(t, "TEST", stats.Issues[1].Scope)
	assert.Equal(t, 1, stats.CoverageGaps)
	assert.Zero(t, stats.DuplicatedFiles)
}
