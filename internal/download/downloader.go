package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	resty "github.com/go-resty/resty/v2"

	"lfscli/internal/config"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/scraper"
)

// Spreadsheet containers accepted as a workbook payload
var allowedContentTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"application/zip",
}

// Result describes a workbook staged on disk
type Result struct {
	URL         string
	Path        string
	Size        int64
	ContentType string
}

// Downloader fetches the release workbook into the staging location
type Downloader struct {
	client *resty.Client
	source config.SourceConfig
	target string
	logger *slog.Logger
}

// NewDownloader creates a downloader writing to target
func NewDownloader(client *resty.Client, source config.SourceConfig, target string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		client: client,
		source: source,
		target: target,
		logger: logger.With(slog.String("component", "downloader")),
	}
}

// Download resolves the workbook URL for link and stages the payload.
// The staged file is only replaced once a spreadsheet payload has been
// fully received.
func (d *Downloader) Download(ctx context.Context, link scraper.ReleaseLink) (*Result, error) {
	url := d.source.WorkbookURL(link.Href)
	start := time.Now()

	d.logger.InfoContext(ctx, "Downloading workbook",
		slog.String("url", url),
		slog.String("destination", d.target))

	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, apperrors.NewDownloadError("download failed for "+url, err).
			WithContext("url", url)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewDownloadError(
			fmt.Sprintf("bad status %s from %s", resp.Status(), url), nil).
			WithContext("url", url).
			WithContext("status", resp.StatusCode())
	}

	body := resp.Body()
	mtype := mimetype.Detect(body)
	if !isSpreadsheet(mtype) {
		return nil, apperrors.NewDownloadError(
			fmt.Sprintf("unexpected content type %s from %s", mtype.String(), url), nil).
			WithContext("url", url).
			WithContext("detected", mtype.String()).
			WithContext("header", resp.Header().Get("Content-Type"))
	}

	if err := writeFileAtomic(d.target, body); err != nil {
		return nil, apperrors.NewStorageError("failed to stage workbook", err).
			WithContext("path", d.target)
	}

	d.logger.InfoContext(ctx, "Workbook downloaded",
		slog.String("file", filepath.Base(d.target)),
		slog.Int("size_bytes", len(body)),
		slog.String("content_type", mtype.String()),
		slog.Duration("duration", time.Since(start)))

	return &Result{
		URL:         url,
		Path:        d.target,
		Size:        int64(len(body)),
		ContentType: mtype.String(),
	}, nil
}

func isSpreadsheet(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, allowed := range allowedContentTypes {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

// writeFileAtomic writes data next to path and renames it into place,
// creating the parent directory if needed
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
