package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file system location a run touches.
// All relative paths are resolved against the working directory.
type Paths struct {
	WorkDir      string
	StagingDir   string
	WorkbookFile string
	OutputFile   string
	LogsDir      string
	LogFile      string
	MetricsFile  string
}

// GetPaths resolves the configured paths against the current working directory
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return ResolvePaths(cfg, wd), nil
}

// ResolvePaths resolves the configured paths against workDir
func ResolvePaths(cfg *Config, workDir string) *Paths {
	stagingDir := resolve(workDir, cfg.Paths.StagingDir)

	paths := &Paths{
		WorkDir:      workDir,
		StagingDir:   stagingDir,
		WorkbookFile: filepath.Join(stagingDir, cfg.Paths.StagingFile),
		OutputFile:   resolve(workDir, cfg.Paths.OutputFile),
	}
	if cfg.Paths.LogsDir != "" {
		paths.LogsDir = resolve(workDir, cfg.Paths.LogsDir)
	}
	// An explicit logging.file_path wins over the logs directory
	switch {
	case cfg.Logging.FilePath != "":
		paths.LogFile = resolve(workDir, cfg.Logging.FilePath)
	case paths.LogsDir != "":
		paths.LogFile = filepath.Join(paths.LogsDir, DefaultLogFile)
	}
	if cfg.Telemetry.MetricsFile != "" {
		paths.MetricsFile = resolve(workDir, cfg.Telemetry.MetricsFile)
	}
	return paths
}

// LoggingConfig returns cfg with FilePath set to the resolved log file
func (p *Paths) LoggingConfig(cfg LoggingConfig) LoggingConfig {
	cfg.FilePath = p.LogFile
	return cfg
}

// EnsureDirectories creates the staging directory and the output file's directory
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.StagingDir,
		filepath.Dir(p.OutputFile),
	}
	if p.MetricsFile != "" {
		directories = append(directories, filepath.Dir(p.MetricsFile))
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.String("work_dir", p.WorkDir),
		slog.String("staging_dir", p.StagingDir),
		slog.String("workbook_file", p.WorkbookFile),
		slog.String("output_file", p.OutputFile),
		slog.String("log_file", p.LogFile),
		slog.String("metrics_file", p.MetricsFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
