package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wsgateway/workspace-gateway/internal/api/handlers"
	"github.com/wsgateway/workspace-gateway/internal/auth/google"
	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/config"
	"github.com/wsgateway/workspace-gateway/internal/logging"
	"github.com/wsgateway/workspace-gateway/internal/tokenstore"
	"github.com/wsgateway/workspace-gateway/internal/version"
)

func main() {
	cfg, err := config.Load(os.Getenv("GATEWAY_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		// Keep serving so /api/auth/debug can diagnose the deployment.
		log.Printf("⚠️ %v — authorization flows will fail until configured", err)
	}

	store, err := tokenstore.Open(cfg.Storage.Backend, cfg.Storage.Key,
		cfg.Storage.FilePath, cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize token storage: %v", err)
	}
	log.Printf("📦 Token storage: %s (key=%s)", cfg.Storage.Backend, cfg.Storage.Key)

	provider := google.NewProvider(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.RedirectURL)
	sessions := session.NewManager(provider, store)

	r := chi.NewRouter()
	r.Use(logging.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// OAuth lifecycle
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", handlers.LoginHandler(sessions))
			r.Get("/callback", handlers.CallbackHandler(sessions))
			r.Get("/status", handlers.StatusHandler(sessions))
			r.Post("/logout", handlers.LogoutHandler(sessions))
			r.Get("/debug", handlers.DebugHandler(cfg, sessions))
		})

		// Gmail
		r.Route("/gmail", func(r chi.Router) {
			r.Get("/", handlers.GmailListHandler(sessions))
			r.Post("/", handlers.GmailSendHandler(sessions))
			r.Get("/{id}", handlers.GmailGetHandler(sessions))
			r.Patch("/{id}", handlers.GmailModifyHandler(sessions))
		})

		// Calendar
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", handlers.CalendarListHandler(sessions))
			r.Post("/", handlers.CalendarCreateHandler(sessions))
			r.Get("/{id}", handlers.CalendarGetHandler(sessions))
			r.Patch("/{id}", handlers.CalendarUpdateHandler(sessions))
			r.Delete("/{id}", handlers.CalendarDeleteHandler(sessions))
		})

		// GA4
		r.Route("/ga4", func(r chi.Router) {
			if cfg.GA4Enabled() {
				r.Get("/", handlers.GA4ReportHandler(sessions, cfg.GA4.PropertyID))
				r.Post("/", handlers.GA4CustomReportHandler(sessions, cfg.GA4.PropertyID))
			} else {
				r.Get("/", handlers.GA4DisabledHandler())
				r.Post("/", handlers.GA4DisabledHandler())
			}
		})
	})

	addr := cfg.Addr()
	log.Printf("🚀 Workspace Gateway %s starting on http://%s", version.Version, addr)
	log.Printf("🔑 Auth: http://%s/api/auth/login", addr)
	log.Printf("📬 Gmail API: http://%s/api/gmail", addr)
	log.Printf("📅 Calendar API: http://%s/api/calendar", addr)
	if cfg.GA4Enabled() {
		log.Printf("📈 GA4 API: http://%s/api/ga4", addr)
	}

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
