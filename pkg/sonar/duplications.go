package sonar

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ShowDuplications returns the duplication groups of one file.
func (c *Client) ShowDuplications(ctx context.Context, fileKey string) (*DuplicationsResponse, error) {
	ctx, span := c.tracer.Start(ctx, "sonar.ShowDuplications")
	defer span.End()

	span.SetAttributes(attribute.String("sonar.file", fileKey))

	params := url.Values{}
	params.Set("key", fileKey)

	var resp DuplicationsResponse

	err := c.get(ctx, EndpointDuplications, params, &resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "show duplications failed")

		return nil, err
	}

	span.SetAttributes(attribute.Int("sonar.duplications", len(resp.Duplications)))

	return &resp, nil
}
