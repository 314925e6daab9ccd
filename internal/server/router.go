// Package server wires handlers, middlewares and shared services into the
// root http.Handler.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/maelj/facturio/internal/auth"
	"github.com/maelj/facturio/internal/config"
	"github.com/maelj/facturio/internal/handlers"
	"github.com/maelj/facturio/internal/httpx"
	"github.com/maelj/facturio/internal/models"
	"github.com/maelj/facturio/internal/pdf"
	"github.com/maelj/facturio/internal/services"
	"github.com/maelj/facturio/internal/store"
)

// New constructs the root handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	sessions := auth.New(cfg.SessionSecret)
	// RequireAuth double-checks the session's user still exists.
	sessions.Verifier = func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	}

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, werr := w.Write([]byte("Facturio API")); werr != nil {
			_ = werr
		}
	})
	//revive:enable:unused-parameter

	// public auth endpoints
	handlers.NewAuthHandler(db, sessions).Register(mux)

	// everything billing-related sits behind the session guard
	history := store.NewHistory(db)
	profiles := store.NewProfiles(db)
	invSvc := services.NewInvoiceService(history, profiles, cfg.RequirePersistence)
	renderer := pdf.NewRenderer(pdf.FileImageSource{}, cfg.DefaultLogoPath)

	protected := http.NewServeMux()
	handlers.NewInvoiceHandler(db, history, profiles, invSvc, renderer).Register(protected)
	handlers.NewClientHandler(db).Register(protected)
	handlers.NewCatalogHandler(db).Register(protected)
	handlers.NewProfileHandler(db, profiles, services.NewProfileService(profiles)).Register(protected)

	guard := sessions.Middleware(sessions.RequireAuth(protected))
	for _, p := range []string{"/invoices", "/invoices/", "/clients", "/clients/", "/catalog", "/catalog/", "/profile"} {
		mux.Handle(p, guard)
	}

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
