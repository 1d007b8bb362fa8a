package config

import "time"

// Application constants
const (
	AppName    = "lfscli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. LFS_WORKBOOK_SHEET.
	EnvPrefix = "LFS"
)

// Source defaults for the ABS "Labour Force, Australia" release.
const (
	DefaultBaseURL    = "https://www.abs.gov.au"
	DefaultListingURL = DefaultBaseURL + "/statistics/labour/employment-and-unemployment/labour-force-australia"

	// DefaultWorkbookSuffix is appended to the release link to reach the
	// table 1 workbook. It has been identical across every release so far;
	// if the publisher renames the file the download fails the content check.
	DefaultWorkbookSuffix = "/6202001.xlsx"

	// DefaultLinkSelector matches the first anchor inside the content container.
	DefaultLinkSelector = "#content a"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	DefaultHTTPTimeout = 60 * time.Second
)

// Workbook layout defaults
const (
	DefaultSheet  = "Data1"
	DefaultMarker = "Series ID"
)

// File paths (relative to the working directory)
const (
	DefaultStagingDir  = "Downloads"
	DefaultStagingFile = "data.xlsx"
	DefaultOutputFile  = "transposed.csv"
	DefaultLogsDir     = "logs"
	DefaultLogFile     = "lfscli.log"
)

// Log settings
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"
)

// Telemetry settings
const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
)
