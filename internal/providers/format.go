package providers

import (
	"log/slog"
	"sort"

	"github.com/tidwall/gjson"

	"edugate/internal/core"
)

// FieldNames returns the sorted top-level field names of a JSON object, or
// nil when body is not one. Used to describe unexpected responses without
// logging their payload.
func FieldNames(body []byte) []string {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil
	}
	var names []string
	parsed.ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	sort.Strings(names)
	return names
}

// MissingField logs the shape of a response lacking path and returns the
// matching upstream format error.
func MissingField(provider, path string, body []byte) *core.GatewayError {
	fields := FieldNames(body)
	slog.Warn("upstream response missing expected field",
		"provider", provider,
		"field", path,
		"response_fields", fields,
	)
	return core.NewUpstreamFormatError(provider, "upstream response missing "+path, nil)
}

// RequireString extracts a non-empty string at path or returns MissingField.
func RequireString(provider string, body []byte, path string) (string, error) {
	v := gjson.GetBytes(body, path)
	if !v.Exists() || v.String() == "" {
		return "", MissingField(provider, path, body)
	}
	return v.String(), nil
}
