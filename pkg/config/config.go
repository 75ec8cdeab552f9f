// Package config provides run configuration for sonarexport.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Config is the top-level configuration struct for sonarexport.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	SonarQube SonarQubeConfig `mapstructure:"sonarqube"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SonarQubeConfig holds the quality server connection settings.
type SonarQubeConfig struct {
	URL             string        `mapstructure:"url"`
	ProjectKey      string        `mapstructure:"project_key"`
	Token           string        `mapstructure:"token"`
	PageSize        int           `mapstructure:"page_size"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxResponseSize string        `mapstructure:"max_response_size"`
}

// ReportConfig selects optional report sections and output behaviour.
type ReportConfig struct {
	Duplications bool `mapstructure:"duplications"`
	Coverage     bool `mapstructure:"coverage"`
	ValidateJSON bool `mapstructure:"validate_json"`
	NoColor      bool `mapstructure:"no_color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`

	// MetricsTextfile, when set, receives a Prometheus text exposition of
	// the run's metrics at exit (node_exporter textfile collector format).
	MetricsTextfile string `mapstructure:"metrics_textfile"`

	Environment string `mapstructure:"environment"`
}

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Sentinel errors for configuration validation.
var (
	// ErrMissingToken indicates no SonarQube access token was configured.
	ErrMissingToken = errors.New("SONARQUBE_TOKEN environment variable must be set")
	// ErrInvalidURL indicates the SonarQube base URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("sonarqube.url must be an absolute http or https URL")
	// ErrInvalidProjectKey indicates the project key is empty.
	ErrInvalidProjectKey = errors.New("sonarqube.project_key must not be empty")
	// ErrInvalidPageSize indicates a page size outside 1..MaxPageSize.
	ErrInvalidPageSize = errors.New("sonarqube.page_size must be between 1 and 500")
	// ErrInvalidTimeout indicates a negative request timeout.
	ErrInvalidTimeout = errors.New("sonarqube.timeout must be non-negative")
	// ErrInvalidResponseSize indicates max_response_size is not a byte size.
	ErrInvalidResponseSize = errors.New("sonarqube.max_response_size must be a byte size such as 64MB")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("logging.format must be text or json")
)

// Validate checks Config invariants and returns the first error found.
// The token is checked first so a missing credential is always the
// reported failure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SonarQube.Token) == "" {
		return ErrMissingToken
	}

	sonarErr := c.validateSonarQube()
	if sonarErr != nil {
		return sonarErr
	}

	return c.validateLogging()
}

func (c *Config) validateSonarQube() error {
	parsed, err := url.Parse(c.SonarQube.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.SonarQube.URL)
	}

	if c.SonarQube.ProjectKey == "" {
		return ErrInvalidProjectKey
	}

	if c.SonarQube.PageSize <= 0 || c.SonarQube.PageSize > MaxPageSize {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.SonarQube.PageSize)
	}

	if c.SonarQube.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.SonarQube.Timeout)
	}

	_, sizeErr := c.MaxResponseBytes()
	if sizeErr != nil {
		return sizeErr
	}

	return nil
}

func (c *Config) validateLogging() error {
	_, levelErr := c.LogLevel()
	if levelErr != nil {
		return levelErr
	}

	switch c.Logging.Format {
	case LogFormatText, LogFormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
}

// MaxResponseBytes parses SonarQube.MaxResponseSize ("64MB", "1 GiB", ...).
func (c *Config) MaxResponseBytes() (int64, error) {
	size, err := humanize.ParseBytes(c.SonarQube.MaxResponseSize)
	if err != nil || size == 0 || size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResponseSize, c.SonarQube.MaxResponseSize)
	}

	return int64(size), nil
}

// LogLevel parses Logging.Level into an slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}

// BaseURL returns the SonarQube URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.SonarQube.URL, "/")
}
