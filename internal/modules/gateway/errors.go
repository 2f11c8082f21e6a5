package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FallbackMessage is shown when an error carries nothing better.
const FallbackMessage = "An unknown error occurred. Please try again."

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// ErrorMessage turns any gateway failure into the text shown to the user.
// An API error body is preferred: its message (or Message) field when it is
// a JSON object, otherwise the body itself.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := bodyMessage(apiErr.Body); ok {
			return msg
		}
		return FallbackMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

func bodyMessage(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(body), true
	}

	switch v := v.(type) {
	case map[string]interface{}:
		for _, key := range []string{"message", "Message"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s, true
			}
		}
		return compactJSON(trimmed), true
	case []interface{}:
		return compactJSON(trimmed), true
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	default:
		return string(body), true
	}
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}
