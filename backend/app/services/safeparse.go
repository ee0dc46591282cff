package services

import (
	"encoding/json"
	"strings"

	"structura/backend/global"
)

// SafeParseObject validates a field expected to hold a serialized JSON object.
// Blank or unparseable input falls back to "{}"; valid input passes through
// untouched, so the function is idempotent. Parse failures are logged, never
// surfaced.
func SafeParseObject(field, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "{}"
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		global.Logger.Warn().Str("field", field).Str("value", raw).Err(err).Msg("unparseable json object, using empty default")
		return "{}"
	}
	return trimmed
}

// SafeParseArray is SafeParseObject for fields holding a serialized JSON
// sequence; the fallback is "[]".
func SafeParseArray(field, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "[]"
	}
	var arr []any
	if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
		global.Logger.Warn().Str("field", field).Str("value", raw).Err(err).Msg("unparseable json array, using empty default")
		return "[]"
	}
	return trimmed
}
