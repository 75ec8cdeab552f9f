package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sonarexport/pkg/config"
)

func validConfig() config.Config {
	return config.Config{
		SonarQube: config.SonarQubeConfig{
			URL:             config.DefaultURL,
			ProjectKey:      config.DefaultProjectKey,
			Token:           "squ_test",
			PageSize:        config.DefaultPageSize,
			MaxResponseSize: config.DefaultMaxResponseSize,
		},
		Logging: config.LoggingConfig{
			Level:  config.DefaultLogLevel,
			Format: config.DefaultLogFormat,
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingTokenReportedFirst(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SonarQube.Token = "  "
	cfg.SonarQube.PageSize = 0
	cfg.Logging.Level = "loud"

	require.ErrorIs(t, cfg.Validate(), config.ErrMissingToken)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"relative url", func(c *config.Config) { c.SonarQube.URL = "sonar.local:9000" }, config.ErrInvalidURL},
		{"ftp url", func(c *config.Config) { c.SonarQube.URL = "ftp://sonar.local" }, config.ErrInvalidURL},
		{"empty project", func(c *config.Config) { c.SonarQube.ProjectKey = "" }, config.ErrInvalidProjectKey},
		{"zero page size", func(c *config.Config) { c.SonarQube.PageSize = 0 }, config.ErrInvalidPageSize},
		{"page size above server limit", func(c *config.Config) { c.SonarQube.PageSize = 1000 }, config.ErrInvalidPageSize},
		{"negative timeout", func(c *config.Config) { c.SonarQube.Timeout = -time.Second }, config.ErrInvalidTimeout},
		{"bad size", func(c *config.Config) { c.SonarQube.MaxResponseSize = "lots" }, config.ErrInvalidResponseSize},
		{"zero size", func(c *config.Config) { c.SonarQube.MaxResponseSize = "0B" }, config.ErrInvalidResponseSize},
		{"size beyond int64", func(c *config.Config) { c.SonarQube.MaxResponseSize = "10EB" }, config.ErrInvalidResponseSize},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, config.ErrInvalidLogLevel},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestMaxResponseBytes(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SonarQube.MaxResponseSize = "2MiB"

	size, err := cfg.MaxResponseBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2*1024*1024), size)
}

func TestMaxResponseBytes_RejectsSizesBeyondInt64(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SonarQube.MaxResponseSize = "10EB"

	size, err := cfg.MaxResponseBytes()
	require.ErrorIs(t, err, config.ErrInvalidResponseSize)
	assert.Zero(t, size)

	cfg.SonarQube.MaxResponseSize = "1EB"

	size, err = cfg.MaxResponseBytes()
	require.NoError(t, err)
	assert.Positive(t, size)
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Logging.Level = "debug"

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestBaseURL_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SonarQube.URL = "https://sonar.example.com/sonar/"

	assert.Equal(t, "https://sonar.example.com/sonar", cfg.BaseURL())
}
