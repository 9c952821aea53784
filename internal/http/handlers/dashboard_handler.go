package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/mohamadtout/therapy-platform-sub003/internal/http/response"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/auth"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

// The dashboards are thin CRUD views over the upstream API. The portal
// forwards the request verbatim, attaching the bearer token held server-side
// for this session.

func (h *Handlers) AdminPassthrough(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, "/admin")
}

func (h *Handlers) SpecialistPassthrough(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, "/specialist")
}

func (h *Handlers) ParentPassthrough(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, "/parent")
}

func (h *Handlers) passthrough(w http.ResponseWriter, r *http.Request, prefix string) {
	claims, ok := r.Context().Value(claimsKey).(*auth.Claims)
	if !ok {
		response.Unauthorized(w, "Sign in required")
		return
	}

	creds, err := h.sessions.Get(r.Context(), claims.SessionID)
	if err != nil || creds == nil {
		response.Unauthorized(w, "Session expired")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	headers := make(map[string]string)
	for key, values := range r.Header {
		if len(values) > 0 && shouldCopyHeader(key) {
			headers[key] = values[0]
		}
	}

	// /v1/admin/... -> upstream /admin/...
	path := strings.TrimPrefix(r.URL.Path, "/v1")
	if !strings.HasPrefix(path, prefix) {
		response.NotFound(w, "Unknown dashboard path")
		return
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	resp, err := h.upstream.Forward(r.Context(), r.Method, path, creds.Token, body, headers)
	if err != nil {
		logger.ErrorContext(r.Context(), "Dashboard passthrough failed", "error", err, "path", path)
		response.WriteError(w, http.StatusServiceUnavailable, "Service unavailable", response.CodeUpstream)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.ErrorContext(r.Context(), "Failed to copy response body", "error", err)
	}
}

func shouldCopyHeader(key string) bool {
	key = strings.ToLower(key)
	skipHeaders := []string{
		"host",
		"connection",
		"cookie",
		"upgrade",
		"proxy-connection",
		"proxy-authenticate",
		"proxy-authorization",
		"authorization",
		"te",
		"trailers",
		"transfer-encoding",
	}

	for _, skip := range skipHeaders {
		if key == skip {
			return false
		}
	}
	return true
}
