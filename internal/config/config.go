package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "lfscli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Workbook  WorkbookConfig  `yaml:"workbook" envconfig:"WORKBOOK"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SourceConfig describes where the release listing and the workbook live
type SourceConfig struct {
	ListingURL     string        `yaml:"listing_url" envconfig:"LISTING_URL" validate:"required,url"`
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	WorkbookSuffix string        `yaml:"workbook_suffix" envconfig:"WORKBOOK_SUFFIX" validate:"required,startswith=/"`
	LinkSelector   string        `yaml:"link_selector" envconfig:"LINK_SELECTOR" validate:"required"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
	FetchMode      string        `yaml:"fetch_mode" envconfig:"FETCH_MODE" validate:"oneof=http browser"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// WorkbookConfig names the sheet and the marker cell of the table to transpose
type WorkbookConfig struct {
	Sheet  string `yaml:"sheet" envconfig:"SHEET" validate:"required"`
	Marker string `yaml:"marker" envconfig:"MARKER" validate:"required"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	StagingDir  string `yaml:"staging_dir" envconfig:"STAGING_DIR" validate:"required"`
	StagingFile string `yaml:"staging_file" envconfig:"STAGING_FILE" validate:"required"`
	OutputFile  string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig controls stage tracing and the metrics text file
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

var configLocations = []string{
	"lfscli.yaml",
	"configs/lfscli.yaml",
}

// Load builds the configuration from defaults, an optional YAML file and
// LFS_* environment variables, in increasing order of precedence.
// An empty configFile searches the usual locations; a named file must exist.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, apperrors.NewConfigError("config file not readable", err).
			WithContext("path", configFile)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", configFile)
		}
	}

	// Fields carry no default tags, so unset variables keep file/default values
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every field against its validate tag
func (c *Config) Validate() error {
	c.normalize()

	v := validator.New()
	if err := v.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
			}
			return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), nil)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" && c.Paths.LogsDir == "" {
		return apperrors.NewConfigError("logging.file_path or paths.logs_dir is required when logging to a file", nil)
	}

	return nil
}

// normalize lower-cases enum values so that "INFO" and "Browser" are accepted
func (c *Config) normalize() {
	c.Source.FetchMode = strings.ToLower(strings.TrimSpace(c.Source.FetchMode))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))
}

// WorkbookURL joins base URL, release link and workbook suffix by plain
// concatenation, exactly as the publisher's paths are laid out.
// Absolute release links skip the base URL.
func (s SourceConfig) WorkbookURL(releaseHref string) string {
	if strings.HasPrefix(releaseHref, "http://") || strings.HasPrefix(releaseHref, "https://") {
		return strings.TrimRight(releaseHref, "/") + s.WorkbookSuffix
	}
	return strings.TrimRight(s.BaseURL, "/") + releaseHref + s.WorkbookSuffix
}

// findConfigFile returns the first config file found in the usual locations
func findConfigFile() string {
	for _, location := range configLocations {
		if FileExists(location) {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			ListingURL:     DefaultListingURL,
			BaseURL:        DefaultBaseURL,
			WorkbookSuffix: DefaultWorkbookSuffix,
			LinkSelector:   DefaultLinkSelector,
			UserAgent:      DefaultUserAgent,
			FetchMode:      FetchModeHTTP,
			Timeout:        DefaultHTTPTimeout,
		},
		Workbook: WorkbookConfig{
			Sheet:  DefaultSheet,
			Marker: DefaultMarker,
		},
		Paths: PathsConfig{
			StagingDir:  DefaultStagingDir,
			StagingFile: DefaultStagingFile,
			OutputFile:  DefaultOutputFile,
			LogsDir:     DefaultLogsDir,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: TraceExporterNone,
		},
	}
}
