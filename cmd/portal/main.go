package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
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
	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
	mw "github.com/mohamadtout/therapy-platform-sub003/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Shared keyed-value store: Redis when configured, in-process otherwise.
	var store kv.Store
	if cfg.Redis.URL != "" {
		redisStore, err := kv.NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = redisStore
		logger.Info("Using Redis store", "url", cfg.Redis.URL)
	} else {
		store = kv.NewMemoryStore()
		logger.Info("Using in-memory store")
	}
	defer store.Close()

	// Draft carts follow the same split: Redis when available, files otherwise.
	var draftStorage draft.Storage
	if cfg.Redis.URL != "" {
		draftStorage = draft.NewKVStorage(store)
	} else {
		fileStorage, err := draft.NewFileStorage(filepath.Join(cfg.Storage.DataDir, "drafts"))
		if err != nil {
			logger.Error("Failed to prepare draft storage", "error", err)
			os.Exit(1)
		}
		draftStorage = fileStorage
	}
	drafts := draft.NewStore(draftStorage)

	var publisher events.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		publisher = natsPublisher
	} else {
		publisher = events.NoopPublisher{}
	}
	defer publisher.Close()

	apiClient := api.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	upstream := proxy.NewUpstreamProxy(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	sessions := session.NewStore(store, cfg.Session.TTL)
	verifications := verify.NewRegistry(cfg.Verification.CodeDuration)
	defer verifications.Shutdown()
	checkouts := checkout.NewManager(drafts, publisher, cfg.Checkout.PaymentDelay)
	defer checkouts.Shutdown()

	h := handlers.New(apiClient, sessions, verifications, checkouts, drafts, publisher, upstream, cfg)

	resendLimiter := mw.NewRateLimiter(store, mw.RateLimitConfig{
		Requests: 5,
		Window:   10 * time.Minute,
		KeyFunc:  mw.IPKeyFunc("resend"),
	})
	contactLimiter := mw.NewRateLimiter(store, mw.RateLimitConfig{
		Requests: 10,
		Window:   time.Hour,
		KeyFunc:  mw.IPKeyFunc("contact"),
	})

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Component("portal"))
	r.Use(mw.Logging)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(req.Context(), "Panic recovered", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(mw.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/signup-confirm", h.SignupConfirm)
			r.With(resendLimiter.Middleware()).Post("/resend-code", h.ResendCode)
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
			r.With(mw.Idempotency(store)).Post("/{id}/payment", h.SubmitPayment)
			r.Post("/{id}/finish", h.FinishCheckout)
			r.Delete("/{id}", h.CloseCheckout)
		})

		r.Get("/cart", h.GetCart)

		r.Route("/content", func(r chi.Router) {
			r.Get("/", h.ListContent)
			r.Get("/{slug}", h.GetContent)
		})

		r.With(contactLimiter.Middleware()).Post("/contact", h.SubmitContact)
		r.Post("/subscribe", h.Subscribe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireLevel("admin"))
			r.HandleFunc("/*", h.AdminPassthrough)
		})

		r.Route("/specialist", func(r chi.Router) {
			r.Use(h.RequireLevel("specialist"))
			r.HandleFunc("/*", h.SpecialistPassthrough)
		})

		r.Route("/parent", func(r chi.Router) {
			r.Use(h.RequireLevel("parent"))
			r.HandleFunc("/*", h.ParentPassthrough)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down portal...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Portal shutdown error", "error", err)
		}
	}()

	logger.Info("Starting portal", "port", cfg.Server.Port, "upstream", cfg.Upstream.BaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Portal server error", "error", err)
		os.Exit(1)
	}
}
