package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
	"github.com/mohamadtout/therapy-platform-sub003/internal/content"
	"github.com/mohamadtout/therapy-platform-sub003/internal/http/response"
)

// ListContent forwards a filtered content listing (blog posts, team bios)
// from the upstream API.
func (h *Handlers) ListContent(w http.ResponseWriter, r *http.Request) {
	contentType := r.URL.Query().Get("type")
	if contentType == "" {
		contentType = "blog"
	}

	filters := api.ContentFilters{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filters.PageSize = n
		}
	}

	list, err := h.api.GetAllContent(r.Context(), contentType, filters)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GetContent returns one piece by slug, with the table of contents extracted
// from its HTML body.
func (h *Handlers) GetContent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		response.BadRequest(w, "Missing content slug")
		return
	}

	piece, err := h.api.GetContentBySlug(r.Context(), slug)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content":         piece,
		"tableOfContents": content.ExtractHeadings(piece.BodyHTML),
	})
}
