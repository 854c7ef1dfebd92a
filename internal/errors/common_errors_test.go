package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", NewAppValidationError("column has no values"), "[VALIDATION] column has no values"},
		{"with cause", NewNetworkError("fetch kpis", fmt.Errorf("timeout")), "[NETWORK] fetch kpis: timeout"},
		{"envelope", NewEnvelopeError(fmt.Errorf("unexpected end of JSON input")), "[PARSING] failed to decode response envelope: unexpected end of JSON input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapAndContext(t *testing.T) {
	cause := fmt.Errorf("eof")
	err := NewParsingError("decode csv", cause).WithContext("line", 3)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, 3, err.Context["line"])
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", NewConfigError("bad url", nil))

	typ, ok := TypeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeConfig, typ)
	assert.True(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(wrapped, ErrTypeNetwork))

	_, ok = TypeOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestMissingColumnError(t *testing.T) {
	err := NewMissingColumnError("kpi_z", []string{"date"})

	var missing *MissingColumnError
	require.True(t, stderrors.As(err, &missing))
	assert.Equal(t, "kpi_z", missing.Column)
	assert.Equal(t, ErrTypeNotFound, err.Type)
	assert.Equal(t, "kpi_z", err.Context["column"])
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode string
		status   int
	}{
		{"network", NewNetworkError("x", nil), "UPSTREAM_FAILED", http.StatusBadGateway},
		{"parsing", NewParsingError("x", nil), "PARSE_FAILED", http.StatusUnprocessableEntity},
		{"validation", NewAppValidationError("x"), "UNPROCESSABLE_DATA", http.StatusUnprocessableEntity},
		{"missing column", NewMissingColumnError("k", nil), "COLUMN_NOT_FOUND", http.StatusNotFound},
		{"not found", NewAppError(ErrTypeNotFound, "thing not found", nil), "NOT_FOUND", http.StatusNotFound},
		{"envelope", NewEnvelopeError(fmt.Errorf("invalid character '<'")), "UPSTREAM_FAILED", http.StatusBadGateway},
		{"wrapped envelope", NewParsingError("fetch", NewEnvelopeError(fmt.Errorf("eof"))), "UPSTREAM_FAILED", http.StatusBadGateway},
		{"config", NewConfigError("x", nil), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.err)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestAPIError_WithDetails(t *testing.T) {
	got := ErrUpstreamFailed.WithDetails("source down", map[string]interface{}{"status": 503})

	assert.Equal(t, http.StatusBadGateway, got.StatusCode)
	assert.Equal(t, "UPSTREAM_FAILED", got.ErrorCode)
	assert.Equal(t, "source down", got.Message)
	assert.Equal(t, "KPI source request failed", ErrUpstreamFailed.Message)
	assert.Nil(t, ErrUpstreamFailed.Details)
}

func TestErrPanic(t *testing.T) {
	got := ErrPanic("kaboom")
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", got.ErrorCode)
	assert.Equal(t, "kaboom", got.Details)
}
