package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler_KeepsWithAttrs(t *testing.T) {
	logger, h := NewTestLogger(t)
	logger.With(slog.String("component", "fetcher")).Info("fetched", slog.Int("rows", 3))

	rec, ok := h.Find("fetched")
	require.True(t, ok)
	assert.Equal(t, "fetcher", rec.Attrs["component"])
	assert.Equal(t, int64(3), rec.Attrs["rows"])
}

func TestCaptureHandler_SharedAcrossChildren(t *testing.T) {
	logger, h := NewTestLogger(t)
	child := logger.With(slog.String("a", "b"))

	logger.Info("one")
	child.Warn("two")

	assert.Len(t, h.Records(), 2)
	AssertLogged(t, h, slog.LevelWarn, "two")
	AssertNoErrors(t, h)
}
