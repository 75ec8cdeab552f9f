package sonar

import (
	"context"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StatusOpen is the issue status filter used for exports.
const StatusOpen = "OPEN"

// SearchIssues returns every open issue of the project, in API order.
func (c *Client) SearchIssues(ctx context.Context, projectKey string) ([]Issue, error) {
	ctx, span := c.tracer.Start(ctx, "sonar.SearchIssues")
	defer span.End()

	span.SetAttributes(attribute.String("sonar.project", projectKey))

	fetch := func(ctx context.Context, page int) ([]Issue, Paging, error) {
		params := url.Values{}
		params.Set("componentKeys", projectKey)
		params.Set("statuses", StatusOpen)
		params.Set("ps", strconv.Itoa(c.pageSize))
		params.Set("p", strconv.Itoa(page))

		var resp IssueSearchResponse

		err := c.get(ctx, EndpointIssues, params, &resp)
		if err != nil {
			return nil, Paging{}, err
		}

		return resp.Issues, resp.PageInfo(), nil
	}

	issues, err := FetchAll(ctx, c.pageSize, fetch, c.logPage(EndpointIssues))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search issues failed")

		return nil, err
	}

	span.SetAttributes(attribute.Int("sonar.records", len(issues)))

	return issues, nil
}
