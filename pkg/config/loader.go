package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".sonarexport"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for sonarexport settings.
const envPrefix = "SONAREXPORT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// DefaultEnvFile is the dotenv file read from the working directory when no
// explicit path is given.
const DefaultEnvFile = ".env"

// legacyEnv maps the plain SONARQUBE_* variables to config keys. They are
// accepted in the process environment and in the dotenv file.
var legacyEnv = []struct {
	name string
	key  string
}{
	{name: "SONARQUBE_URL", key: "sonarqube.url"},
	{name: "SONARQUBE_PROJECT_KEY", key: "sonarqube.project_key"},
	{name: "SONARQUBE_TOKEN", key: "sonarqube.token"},
}

// LoadConfig loads configuration from defaults, an optional YAML file, an
// optional dotenv file and the environment, in increasing precedence.
// If configPath is non-empty it is used as the explicit config file path;
// otherwise .sonarexport.yaml is searched in CWD and $HOME. If envFile is
// empty, ./.env is read when present. Missing implicit files are not errors.
func LoadConfig(configPath, envFile string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	bindErr := bindLegacyEnv(viperCfg)
	if bindErr != nil {
		return nil, bindErr
	}

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	dotenvErr := mergeDotEnv(viperCfg, envFile)
	if dotenvErr != nil {
		return nil, dotenvErr
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("sonarqube.url", DefaultURL)
	viperCfg.SetDefault("sonarqube.project_key", DefaultProjectKey)
	viperCfg.SetDefault("sonarqube.token", "")
	viperCfg.SetDefault("sonarqube.page_size", DefaultPageSize)
	viperCfg.SetDefault("sonarqube.timeout", DefaultTimeout)
	viperCfg.SetDefault("sonarqube.max_response_size", DefaultMaxResponseSize)

	viperCfg.SetDefault("report.duplications", DefaultReportDuplications)
	viperCfg.SetDefault("report.coverage", DefaultReportCoverage)
	viperCfg.SetDefault("report.validate_json", DefaultReportValidateJSON)
	viperCfg.SetDefault("report.no_color", DefaultReportNoColor)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.metrics_textfile", DefaultMetricsTextfile)
	viperCfg.SetDefault("telemetry.environment", DefaultEnvironment)
}

// bindLegacyEnv lets SONARQUBE_URL and friends feed the nested keys. The
// prefixed SONAREXPORT_* name is listed first so it wins when both are set.
func bindLegacyEnv(viperCfg *viper.Viper) error {
	replacer := strings.NewReplacer(".", envKeySeparator)

	for _, binding := range legacyEnv {
		prefixed := envPrefix + envKeySeparator + strings.ToUpper(replacer.Replace(binding.key))

		err := viperCfg.BindEnv(binding.key, prefixed, binding.name)
		if err != nil {
			return fmt.Errorf("bind env %s: %w", binding.name, err)
		}
	}

	return nil
}

// mergeDotEnv merges SONARQUBE_* values from a dotenv file into the config
// layer. Real environment variables still take precedence over them.
func mergeDotEnv(viperCfg *viper.Viper, envFile string) error {
	path := envFile
	if path == "" {
		path = DefaultEnvFile

		_, statErr := os.Stat(path)
		if errors.Is(statErr, fs.ErrNotExist) {
			return nil
		}
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")

	readErr := dotenv.ReadInConfig()
	if readErr != nil {
		return fmt.Errorf("read env file %s: %w", path, readErr)
	}

	sonarqube := make(map[string]any)

	for _, binding := range legacyEnv {
		name := strings.ToLower(binding.name)
		if !dotenv.IsSet(name) {
			continue
		}

		_, field, _ := strings.Cut(binding.key, ".")
		sonarqube[field] = dotenv.GetString(name)
	}

	if len(sonarqube) == 0 {
		return nil
	}

	mergeErr := viperCfg.MergeConfigMap(map[string]any{"sonarqube": sonarqube})
	if mergeErr != nil {
		return fmt.Errorf("merge env file %s: %w", path, mergeErr)
	}

	return nil
}
