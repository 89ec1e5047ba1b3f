package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces sensitive field values in log output.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"passphrase": {},
	"privatekey": {},
	"signature":  {},
	"keystore":   {},
}

// IsSensitive reports whether values under the key must never be logged in
// the clear.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskField returns a slog attribute with the value replaced by the redaction
// placeholder whenever the key is sensitive. Empty values pass through so
// unset fields stay readable.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || !IsSensitive(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
