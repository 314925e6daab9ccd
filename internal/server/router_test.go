package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maelj/facturio/internal/config"
	"github.com/maelj/facturio/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.CompanyProfile{}, &models.Client{}, &models.CatalogItem{}, &models.Invoice{}, &models.LineItem{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, config.Config{SessionSecret: "router-test"})
}

func TestHealthEndpoints(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s expected 200 got %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/invoices", "/invoices/next-number", "/clients", "/catalog", "/profile"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s expected 401 got %d", path, w.Code)
		}
	}
}

func TestSignupThenAuthenticatedRequest(t *testing.T) {
	h := setupRouter(t)

	signup := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"flow@test.fr","password":"s3cret"}`))
	sw := httptest.NewRecorder()
	h.ServeHTTP(sw, signup)
	if sw.Code != http.StatusCreated {
		t.Fatalf("signup expected 201 got %d body=%s", sw.Code, sw.Body.String())
	}
	cookies := sw.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("signup set no cookie")
	}

	list := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	list.AddCookie(cookies[0])
	lw := httptest.NewRecorder()
	h.ServeHTTP(lw, list)
	if lw.Code != http.StatusOK {
		t.Fatalf("authed list expected 200 got %d body=%s", lw.Code, lw.Body.String())
	}
}

func TestUnknownPathIs404(t *testing.T) {
	h := setupRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
