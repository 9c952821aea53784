package api_test

import (
	"errors"
	"testing"

	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
)

func TestNormalizePriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "structured message shown verbatim",
			err:  &api.Error{Status: 409, StatusText: "Conflict", Message: "Email already exists"},
			want: "Email already exists",
		},
		{
			name: "message wins over field errors",
			err: &api.Error{
				Status:  422,
				Message: "Validation failed upstream",
				Fields:  map[string]string{"email": "Email is taken"},
			},
			want: "Validation failed upstream",
		},
		{
			name: "field errors joined in key order",
			err: &api.Error{
				Status: 422,
				Fields: map[string]string{
					"email": "Email is invalid",
					"code":  "Code is wrong",
				},
			},
			want: "Code is wrong; Email is invalid",
		},
		{
			name: "bare status falls back to status line",
			err:  &api.Error{Status: 404, StatusText: "Not Found"},
			want: "Error: 404 - Not Found",
		},
		{
			name: "transport failure uses the connection notice",
			err:  &api.Error{Transport: true, Err: errors.New("dial tcp 127.0.0.1:9000: connection refused")},
			want: api.ConnectionMessage,
		},
		{
			name: "pre-request failure surfaces its own message",
			err:  &api.Error{Err: errors.New("failed to encode request: unsupported type")},
			want: "failed to encode request: unsupported type",
		},
		{
			name: "empty error gets the generic fallback",
			err:  &api.Error{},
			want: api.GenericMessage,
		},
		{
			name: "plain errors pass through",
			err:  errors.New("something local broke"),
			want: "something local broke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.Normalize(tt.err); got != tt.want {
				t.Fatalf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeNilError(t *testing.T) {
	if got := api.Normalize(nil); got != "" {
		t.Fatalf("expected empty string for nil error, got %q", got)
	}
}
