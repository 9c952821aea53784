package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
	"github.com/mohamadtout/therapy-platform-sub003/internal/checkout"
	"github.com/mohamadtout/therapy-platform-sub003/internal/draft"
	"github.com/mohamadtout/therapy-platform-sub003/internal/http/handlers"
	"github.com/mohamadtout/therapy-platform-sub003/internal/proxy"
	"github.com/mohamadtout/therapy-platform-sub003/internal/session"
	"github.com/mohamadtout/therapy-platform-sub003/internal/verify"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/config"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/events"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/kv"
)

// upstreamRecorder is the fake platform API behind the portal.
type upstreamRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

func (u *upstreamRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	json.NewDecoder(r.Body).Decode(&body)

	u.mu.Lock()
	u.requests = append(u.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	u.mu.Unlock()

	u.handler(w, r)
}

func (u *upstreamRecorder) calls() []recordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]recordedRequest(nil), u.requests...)
}

type testPortal struct {
	router   chi.Router
	upstream *upstreamRecorder
	verify   *verify.Registry
	drafts   *draft.Store
}

func newTestPortal(t *testing.T, verifyWindow time.Duration, upstreamHandler http.HandlerFunc) *testPortal {
	t.Helper()

	upstream := &upstreamRecorder{handler: upstreamHandler}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Session.Secret = "test-secret"
	cfg.Session.CookieName = "portal_session"
	cfg.Session.TTL = time.Hour
	cfg.Verification.CodeDuration = verifyWindow
	cfg.Checkout.PaymentDelay = time.Millisecond

	store := kv.NewMemoryStore()
	apiClient := api.NewClient(srv.URL, 5*time.Second)
	sessions := session.NewStore(store, time.Hour)
	verifications := verify.NewRegistry(verifyWindow)
	t.Cleanup(verifications.Shutdown)
	drafts := draft.NewStore(draft.NewMemoryStorage())
	checkouts := checkout.NewManager(drafts, events.NoopPublisher{}, time.Millisecond)
	t.Cleanup(checkouts.Shutdown)
	up := proxy.NewUpstreamProxy(srv.URL, 5*time.Second)

	h := handlers.New(apiClient, sessions, verifications, checkouts, drafts, events.NoopPublisher{}, up, cfg)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/signup-confirm", h.SignupConfirm)
			r.Post("/resend-code", h.ResendCode)
			r.Get("/verification-status", h.VerificationStatus)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password/begin", h.BeginPasswordReset)
			r.Post("/reset-password", h.ResetPassword)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.CreateCheckout)
			r.Get("/{id}", h.GetCheckout)
			r.Post("/{id}/booking", h.SubmitBooking)
			r.Post("/{id}/back", h.CheckoutBack)
			r.Post("/{id}/payment", h.SubmitPayment)
			r.Post("/{id}/finish", h.FinishCheckout)
			r.Delete("/{id}", h.CloseCheckout)
		})
		r.Get("/cart", h.GetCart)
		r.Route("/content", func(r chi.Router) {
			r.Get("/", h.ListContent)
			r.Get("/{slug}", h.GetContent)
		})
		r.Post("/contact", h.SubmitContact)
		r.Post("/subscribe", h.Subscribe)
		r.Route("/parent", func(r chi.Router) {
			r.Use(h.RequireLevel("parent"))
			r.HandleFunc("/*", h.ParentPassthrough)
		})
	})

	return &testPortal{router: r, upstream: upstream, verify: verifications, drafts: drafts}
}

func (p *testPortal) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}
