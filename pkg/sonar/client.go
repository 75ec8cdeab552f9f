// Package sonar is a client for the SonarQube web API endpoints needed to
// export issues, duplications and coverage of one project.
package sonar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sonarexport/pkg/observability"
	"github.com/Sumatoshi-tech/sonarexport/pkg/version"
)

// API endpoints.
const (
	EndpointIssues        = "/api/issues/search"
	EndpointComponentTree = "/api/measures/component_tree"
	EndpointDuplications  = "/api/duplications/show"
)

const (
	// DefaultPageSize is the largest page size the server accepts.
	DefaultPageSize = 500

	// DefaultMaxResponseSize bounds a single response body.
	DefaultMaxResponseSize = 64 << 20

	// maxErrorBody is how much of a failed response is kept in StatusError.
	maxErrorBody = 512
)

// Sentinel errors.
var (
	// ErrResponseTooLarge indicates a response body exceeded the configured limit.
	ErrResponseTooLarge = errors.New("response body exceeds size limit")
	// ErrDecode indicates a response body that is not the expected JSON shape.
	ErrDecode = errors.New("decode response")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("GET %s: unexpected status %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}

	return msg
}

// Client calls the SonarQube web API with token authentication. It issues
// one request at a time and never retries.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	maxBody    int64
	userAgent  string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
	metrics    *observability.APIMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets the page size of paginated requests.
func WithPageSize(size int) Option {
	return func(c *Client) { c.pageSize = size }
}

// WithMaxResponseSize bounds every response body to size bytes.
func WithMaxResponseSize(size int64) Option {
	return func(c *Client) { c.maxBody = size }
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records response sizes into m.
func WithMetrics(m *observability.APIMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the server at baseURL. A trailing slash in
// baseURL is ignored.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		pageSize:   DefaultPageSize,
		maxBody:    DefaultMaxResponseSize,
		userAgent:  version.UserAgent(),
		httpClient: &http.Client{},
		tracer:     nooptrace.NewTracerProvider().Tracer(""),
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// logPage is the ProgressFunc shared by all paginated calls.
func (c *Client) logPage(endpoint string) ProgressFunc {
	return func(ctx context.Context, page Page) {
		c.logger.DebugContext(ctx, "fetched page",
			slog.String("endpoint", endpoint),
			slog.Int("page", page.Number),
			slog.Int("page_size", page.Size),
			slog.Int("total", page.Total),
		)
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request %s: %w", endpoint, err)
	}

	req.SetBasicAuth(c.token, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp.Body)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}

	c.metrics.RecordResponseBytes(ctx, endpoint, int64(len(body)))
	c.logger.DebugContext(ctx, "api response",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("size", humanize.Bytes(uint64(len(body)))),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrDecode, endpoint, err)
	}

	return nil
}

// readBody reads at most maxBody bytes and fails when more are available.
func (c *Client) readBody(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w (%s)", ErrResponseTooLarge, humanize.Bytes(uint64(c.maxBody)))
	}

	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
