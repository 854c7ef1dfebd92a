package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "kpistats/internal/errors"
)

// Fetcher returns the raw CSV payload, or "" when the source has no data
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// HTTPFetcher issues a single GET against the KPI endpoint
type HTTPFetcher struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPFetcher creates a fetcher for url. A zero timeout leaves the request
// bounded only by its context.
func NewHTTPFetcher(url string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(slog.String("component", "http_fetcher")),
	}
}

// URL returns the configured endpoint
func (f *HTTPFetcher) URL() string {
	return f.url
}

// Fetch retrieves and unwraps the envelope. The status code is not inspected;
// whatever body comes back must be a JSON envelope.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", apperrors.NewNetworkError("failed to build request", err).WithContext("url", f.url)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperrors.NewNetworkError("failed to fetch kpis", err).WithContext("url", f.url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewNetworkError("failed to read response", err).WithContext("url", f.url)
	}

	f.logger.DebugContext(ctx, "kpi source responded",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	csvText, err := DecodeEnvelope(body)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("status", resp.StatusCode).WithContext("url", f.url)
		}
		return "", err
	}

	if csvText == "" {
		f.logger.InfoContext(ctx, "kpi source returned no data", slog.Int("status", resp.StatusCode))
	}
	return csvText, nil
}

// FileFetcher reads the payload from a local file. Files ending in .json are
// treated as envelopes, anything else as raw CSV.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher reading path
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Fetch reads the file
func (f *FileFetcher) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to read %s", f.path), err)
	}

	if strings.EqualFold(filepath.Ext(f.path), ".json") {
		return DecodeEnvelope(data)
	}
	return string(data), nil
}

// StaticFetcher always returns the same payload
type StaticFetcher string

// Fetch returns the fixed payload
func (s StaticFetcher) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}
