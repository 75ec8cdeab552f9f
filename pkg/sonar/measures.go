package sonar

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// QualifierFile restricts a component tree to files.
const QualifierFile = "FIL"

// Metric keys.
const (
	MetricDuplicatedLinesDensity = "duplicated_lines_density"
	MetricCoverage               = "coverage"
	MetricLineCoverage           = "line_coverage"
	MetricBranchCoverage         = "branch_coverage"
	MetricUncoveredLines         = "uncovered_lines"
	MetricUncoveredConditions    = "uncovered_conditions"
)

// CoverageMetrics are the metric keys requested for the coverage section.
var CoverageMetrics = []string{
	MetricCoverage,
	MetricLineCoverage,
	MetricBranchCoverage,
	MetricUncoveredLines,
	MetricUncoveredConditions,
}

// ComponentTree returns every file component of the project with the
// requested measures, in API order.
func (c *Client) ComponentTree(ctx context.Context, projectKey string, metricKeys []string) ([]Component, error) {
	ctx, span := c.tracer.Start(ctx, "sonar.ComponentTree")
	defer span.End()

	metrics := strings.Join(metricKeys, ",")

	span.SetAttributes(
		attribute.String("sonar.project", projectKey),
		attribute.String("sonar.metrics", metrics),
	)

	fetch := func(ctx context.Context, page int) ([]Component, Paging, error) {
		params := url.Values{}
		params.Set("component", projectKey)
		params.Set("metricKeys", metrics)
		params.Set("qualifiers", QualifierFile)
		params.Set("ps", strconv.Itoa(c.pageSize))
		params.Set("p", strconv.Itoa(page))

		var resp ComponentTreeResponse

		err := c.get(ctx, EndpointComponentTree, params, &resp)
		if err != nil {
			return nil, Paging{}, err
		}

		return resp.Components, resp.Paging, nil
	}

	components, err := FetchAll(ctx, c.pageSize, fetch, c.logPage(EndpointComponentTree))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "component tree failed")

		return nil, err
	}

	span.SetAttributes(attribute.Int("sonar.records", len(components)))

	return components, nil
}
