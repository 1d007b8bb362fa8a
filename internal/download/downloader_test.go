package download

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lfscli/internal/config"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/infrastructure"
	"lfscli/internal/scraper"
)

const (
	releaseHref = "/statistics/labour/employment-and-unemployment/labour-force-australia/aug-2024"
	workbookURL = "https://www.abs.gov.au" + releaseHref + "/6202001.xlsx"
)

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data1")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Data1", "A1", "Series ID"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("readme.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newMockedDownloader(t *testing.T, target string) *Downloader {
	t.Helper()
	source := config.Default().Source
	client := infrastructure.NewHTTPClient(source)
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewDownloader(client, source, target, nil)
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name    string
		payload func(*testing.T) []byte
	}{
		{name: "xlsx workbook", payload: workbookBytes},
		{name: "generic zip container", payload: zipBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "Downloads", "data.xlsx")
			d := newMockedDownloader(t, target)

			payload := tt.payload(t)
			httpmock.RegisterResponder(http.MethodGet, workbookURL,
				httpmock.NewBytesResponder(200, payload))

			result, err := d.Download(context.Background(), scraper.ReleaseLink{Href: releaseHref})
			require.NoError(t, err)

			assert.Equal(t, workbookURL, result.URL)
			assert.Equal(t, target, result.Path)
			assert.Equal(t, int64(len(payload)), result.Size)
			assert.NotEmpty(t, result.ContentType)

			staged, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, payload, staged)

			leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(target), ".*.tmp"))
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestDownloadOverwritesStagedFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, os.WriteFile(target, []byte("previous run"), 0644))

	d := newMockedDownloader(t, target)
	payload := workbookBytes(t)
	httpmock.RegisterResponder(http.MethodGet, workbookURL, httpmock.NewBytesResponder(200, payload))

	_, err := d.Download(context.Background(), scraper.ReleaseLink{Href: releaseHref})
	require.NoError(t, err)

	staged, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, payload, staged)
}

func TestDownloadFailures(t *testing.T) {
	tests := []struct {
		name        string
		responder   httpmock.Responder
		wantMessage string
	}{
		{
			name:        "html error page served with 200",
			responder:   httpmock.NewStringResponder(200, "<!DOCTYPE html><html><body>Page not found</body></html>"),
			wantMessage: "unexpected content type text/html",
		},
		{
			name:        "plain text",
			responder:   httpmock.NewStringResponder(200, "Series ID,Jan-23\n"),
			wantMessage: "unexpected content type",
		},
		{
			name:        "not found",
			responder:   httpmock.NewStringResponder(404, "missing"),
			wantMessage: "bad status 404",
		},
		{
			name:        "transport error",
			responder:   httpmock.NewErrorResponder(assert.AnError),
			wantMessage: "download failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "data.xlsx")
			require.NoError(t, os.WriteFile(target, []byte("previous run"), 0644))

			d := newMockedDownloader(t, target)
			httpmock.RegisterResponder(http.MethodGet, workbookURL, tt.responder)

			result, err := d.Download(context.Background(), scraper.ReleaseLink{Href: releaseHref})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDownload))
			assert.Equal(t, apperrors.ExitDownload, apperrors.ExitCode(err))
			assert.Contains(t, err.Error(), tt.wantMessage)
			assert.Contains(t, err.Error(), workbookURL)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, workbookURL, appErr.Context["url"])

			staged, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, "previous run", string(staged))
		})
	}
}

func TestDownloadStagingNotWritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "Downloads")
	require.NoError(t, os.WriteFile(blocker, []byte("a file, not a directory"), 0644))

	d := newMockedDownloader(t, filepath.Join(blocker, "data.xlsx"))
	httpmock.RegisterResponder(http.MethodGet, workbookURL, httpmock.NewBytesResponder(200, workbookBytes(t)))

	_, err := d.Download(context.Background(), scraper.ReleaseLink{Href: releaseHref})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
