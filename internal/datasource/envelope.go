package datasource

import (
	"encoding/json"

	apperrors "kpistats/internal/errors"
)

// Envelope is the JSON wrapper around the CSV payload.
// OK is kept loosely typed since sources send booleans, numbers or strings.
type Envelope struct {
	OK   any     `json:"ok"`
	Data *string `json:"data"`
}

// Payload returns the CSV text, or "" when the envelope carries no data
func (e Envelope) Payload() string {
	if !truthy(e.OK) || e.Data == nil {
		return ""
	}
	return *e.Data
}

// DecodeEnvelope parses body and unwraps its CSV payload
func DecodeEnvelope(body []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", apperrors.NewEnvelopeError(err)
	}
	return env.Payload(), nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
