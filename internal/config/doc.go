// Package config provides centralized configuration management for lfscli.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: the -config flag, lfscli.yaml or configs/lfscli.yaml
//	3. Environment variables with the LFS_ prefix
//	4. Command line flags, applied by each command
//
// # Environment Variables
//
// Variables follow the section/field layout of Config:
//
//	LFS_SOURCE_LISTING_URL=https://www.abs.gov.au/statistics/...
//	LFS_SOURCE_FETCH_MODE=browser
//	LFS_WORKBOOK_SHEET=Data1
//	LFS_PATHS_OUTPUT_FILE=out/transposed.csv
//	LFS_LOGGING_LEVEL=debug
//	LFS_TELEMETRY_METRICS_FILE=metrics/lfscli.prom
//
// # Path Management
//
// Paths resolves the staging directory, the staged workbook, the output file and
// the optional log and metrics files against the working directory:
//
//	paths, err := config.GetPaths(cfg)
//	workbook := paths.WorkbookFile // Downloads/data.xlsx
//
// # Validation
//
// Validate checks the merged configuration with go-playground/validator struct
// tags (URLs, enumerations, required fields) and reports every failing field in
// a single CONFIG error.
package config
