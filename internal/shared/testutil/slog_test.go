package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, capture := NewTestLogger(t)

	logger.Info("first", slog.String("k", "v"))
	logger.With(slog.String("component", "scraper")).Error("second")

	records := capture.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "v", records[0].Attrs["k"])
	assert.Equal(t, "scraper", records[1].Attrs["component"])
	assert.Len(t, capture.AtLevel(slog.LevelError), 1)
	assert.True(t, capture.Contains("sec"))
	assert.False(t, capture.Contains("third"))
}

func TestLogCaptureDerivedHandlersDoNotLeakAttrs(t *testing.T) {
	logger, capture := NewTestLogger(nil)

	_ = logger.With(slog.String("component", "a"))
	logger.Warn("plain")

	records := capture.Records()
	require.Len(t, records, 1)
	assert.NotContains(t, records[0].Attrs, "component")
	AssertNoErrors(t, capture)
}
