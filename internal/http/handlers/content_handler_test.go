package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestListContentForwardsFilters(t *testing.T) {
	var gotQuery map[string]string
	portal := newTestPortal(t, 300*time.Second, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{{"slug": "first-words", "title": "First Words"}},
			"total": 1,
		})
	})

	rec := portal.do(t, "GET", "/v1/content/?type=team&page=2&page_size=10&search=speech", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	want := map[string]string{"type": "team", "page": "2", "page_size": "10", "search": "speech"}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Errorf("upstream query %s = %q, want %q", key, gotQuery[key], value)
		}
	}

	body := decodeBody(t, rec)
	if body["total"] != float64(1) {
		t.Fatalf("total = %v", body["total"])
	}
}

func TestListContentDefaultsToBlog(t *testing.T) {
	var gotType string
	portal := newTestPortal(t, 300*time.Second, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		w.Write([]byte(`{"items":[],"total":0}`))
	})

	portal.do(t, "GET", "/v1/content/", nil)
	if gotType != "blog" {
		t.Fatalf("type = %q, want blog", gotType)
	}
}

func TestGetContentExtractsTableOfContents(t *testing.T) {
	portal := newTestPortal(t, 300*time.Second, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/first-words" {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]interface{}{
				"slug":    "first-words",
				"title":   "First Words",
				"content": `<h2>What to expect</h2><p>...</p><h3>Month by month</h3>`,
			},
		})
	})

	rec := portal.do(t, "GET", "/v1/content/first-words", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	toc, _ := body["tableOfContents"].([]interface{})
	if len(toc) != 2 {
		t.Fatalf("tableOfContents = %v", body["tableOfContents"])
	}
	first, _ := toc[0].(map[string]interface{})
	if first["anchor"] != "what-to-expect" || first["level"] != float64(2) {
		t.Fatalf("first heading = %v", first)
	}
}

func TestGetContentNotFound(t *testing.T) {
	portal := newTestPortal(t, 300*time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Content not found"})
	})

	rec := portal.do(t, "GET", "/v1/content/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want mirrored 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Content not found" {
		t.Fatalf("error = %v", body["error"])
	}
}
