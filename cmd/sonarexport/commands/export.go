// Package commands implements the sonarexport command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sonarexport/pkg/config"
	"github.com/Sumatoshi-tech/sonarexport/pkg/observability"
	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/report/render"
	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
	"github.com/Sumatoshi-tech/sonarexport/pkg/terminal"
	"github.com/Sumatoshi-tech/sonarexport/pkg/version"
)

type configLoader func(configPath, envFile string) (*config.Config, error)

type telemetryInit func(cfg observability.Config) (observability.Providers, error)

// ExportCommand holds flags and dependencies of the root command.
type ExportCommand struct {
	configPath string
	envFile    string
	verbose    bool
	quiet      bool
	noColor    bool

	loadConfig    configLoader
	initTelemetry telemetryInit
	transport     http.RoundTripper
}

// NewRootCommand creates the sonarexport root command.
func NewRootCommand() *cobra.Command {
	return newRootCommandWithDeps(config.LoadConfig, observability.Init, http.DefaultTransport)
}

func newRootCommandWithDeps(loader configLoader, initFn telemetryInit, transport http.RoundTripper) *cobra.Command {
	ec := &ExportCommand{
		loadConfig:    loader,
		initTelemetry: initFn,
		transport:     transport,
	}

	cmd := &cobra.Command{
		Use:   "sonarexport [mode]",
		Short: "Export SonarQube issues, duplications and coverage",
		Long: `Export the open issues, duplicated blocks and coverage gaps of a SonarQube
project as one report.

Modes:
  agent     Markdown for a code-fixing agent (default)
  readable  issues grouped by severity
  json      machine-readable report
  yaml      machine-readable report
  html      charts page

Any other mode value selects agent output.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          ec.run,
	}

	cmd.SetVersionTemplate(fmt.Sprintf("sonarexport {{.Version}} (commit: %s, built: %s)\n", version.Commit, version.Date))

	cmd.Flags().StringVar(&ec.configPath, "config", "", "Config file (default: .sonarexport.yaml in . or $HOME)")
	cmd.Flags().StringVar(&ec.envFile, "env-file", "", "Dotenv file with SONARQUBE_* settings (default: ./.env when present)")
	cmd.Flags().BoolVarP(&ec.verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().BoolVarP(&ec.quiet, "quiet", "q", false, "Suppress progress messages")
	cmd.Flags().BoolVar(&ec.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (ec *ExportCommand) run(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	mode := render.ParseMode(arg)

	cfg, err := ec.loadConfig(ec.configPath, ec.envFile)
	if err != nil {
		return err
	}

	obsCfg, err := ec.telemetryConfig(cmd, cfg, mode)
	if err != nil {
		return err
	}

	providers, err := ec.initTelemetry(obsCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	exportErr := ec.export(cmd, cfg, mode, providers)

	shutdownErr := providers.Shutdown(context.WithoutCancel(cmd.Context()))
	if shutdownErr != nil {
		shutdownErr = fmt.Errorf("shutdown telemetry: %w", shutdownErr)
	}

	return errors.Join(exportErr, shutdownErr)
}

func (ec *ExportCommand) telemetryConfig(cmd *cobra.Command, cfg *config.Config, mode render.Mode) (observability.Config, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	if ec.verbose {
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OutputMode = string(mode)
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.MetricsTextfile = cfg.Telemetry.MetricsTextfile
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.LogFormatJSON
	obsCfg.LogOutput = cmd.ErrOrStderr()

	return obsCfg, nil
}

func (ec *ExportCommand) export(cmd *cobra.Command, cfg *config.Config, mode render.Mode, providers observability.Providers) error {
	ctx := cmd.Context()
	logger := providers.Logger

	apiMetrics, err := observability.NewAPIMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create api metrics: %w", err)
	}

	reportMetrics, err := observability.NewReportMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create report metrics: %w", err)
	}

	maxBody, err := cfg.MaxResponseBytes()
	if err != nil {
		return err
	}

	httpClient := &http.Client{
		Timeout:   cfg.SonarQube.Timeout,
		Transport: observability.NewTransport(ec.transport, providers.Tracer, apiMetrics),
	}

	client := sonar.NewClient(cfg.BaseURL(), cfg.SonarQube.Token,
		sonar.WithHTTPClient(httpClient),
		sonar.WithPageSize(cfg.SonarQube.PageSize),
		sonar.WithMaxResponseSize(maxBody),
		sonar.WithTracer(providers.Tracer),
		sonar.WithLogger(logger),
		sonar.WithMetrics(apiMetrics),
	)

	progress := cmd.ErrOrStderr()
	if ec.quiet {
		progress = nil
	}

	collector := report.NewCollector(client,
		report.WithTracer(providers.Tracer),
		report.WithLogger(logger),
		report.WithMetrics(reportMetrics),
		report.WithProgress(progress),
	)

	logger.DebugContext(ctx, "starting export",
		slog.String("url", cfg.BaseURL()),
		slog.String("project", cfg.SonarQube.ProjectKey),
		slog.Int("page_size", cfg.SonarQube.PageSize),
	)

	rep, err := collector.Collect(ctx, report.Options{
		ProjectKey:   cfg.SonarQube.ProjectKey,
		Duplications: cfg.Report.Duplications,
		Coverage:     cfg.Report.Coverage,
	})
	if err != nil {
		return err
	}

	opts := render.DefaultOptions()
	opts.ValidateJSON = cfg.Report.ValidateJSON
	opts.Terminal = terminal.NewConfig()
	opts.Terminal.NoColor = opts.Terminal.NoColor || ec.noColor || cfg.Report.NoColor
	opts.Title = "SonarQube report: " + cfg.SonarQube.ProjectKey

	return render.Render(cmd.OutOrStdout(), mode, rep, opts)
}
