package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// User-facing fallback messages. Every form shows the same connection wording,
// so it lives here rather than per handler.
const (
	ConnectionMessage = "Unable to reach the server. Please check your connection and try again."
	GenericMessage    = "Something went wrong. Please try again."
)

// Error describes a failed call to the upstream platform API. The zero-value
// distinction matters: Status > 0 means a response arrived, Transport means
// the request left but nothing came back.
type Error struct {
	Status     int
	StatusText string
	Message    string            // structured message from the response body
	Fields     map[string]string // structured per-field errors from the response body
	Transport  bool              // request sent, no response received
	Err        error             // underlying cause, for failures before the request
}

func (e *Error) Error() string {
	return e.UserMessage()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage resolves the displayable message for a failure. Priority order:
// structured message, joined field errors, status line, connection notice,
// underlying cause, generic fallback.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return joinFieldErrors(e.Fields)
	}
	if e.Status > 0 {
		return fmt.Sprintf("Error: %d - %s", e.Status, e.StatusText)
	}
	if e.Transport {
		return ConnectionMessage
	}
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return GenericMessage
}

// Normalize turns any error from a remote action into the single string a
// form surfaces to the user.
func Normalize(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericMessage
}

func joinFieldErrors(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fields[k])
	}
	return strings.Join(parts, "; ")
}
