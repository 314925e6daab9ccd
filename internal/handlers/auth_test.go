package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maelj/facturio/internal/auth"
)

func TestSignupLoginLogout(t *testing.T) {
	db := setupHandlerDB(t)
	sessions := auth.New("test-secret")
	h := NewAuthHandler(db, sessions)

	signup := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"new@test.fr","password":"s3cret","nom":"Martin","prenom":"Paul"}`))
	sw := httptest.NewRecorder()
	h.signup(sw, signup)
	if sw.Code != http.StatusCreated {
		t.Fatalf("signup expected 201 got %d body=%s", sw.Code, sw.Body.String())
	}
	if len(sw.Result().Cookies()) == 0 {
		t.Fatalf("signup set no session cookie")
	}

	// duplicate email rejected
	dup := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"new@test.fr","password":"other"}`))
	dw := httptest.NewRecorder()
	h.signup(dw, dup)
	if dw.Code != http.StatusConflict {
		t.Fatalf("duplicate signup expected 409 got %d", dw.Code)
	}

	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"new@test.fr","password":"s3cret"}`))
	lw := httptest.NewRecorder()
	h.login(lw, login)
	if lw.Code != http.StatusOK {
		t.Fatalf("login expected 200 got %d body=%s", lw.Code, lw.Body.String())
	}
	cookies := lw.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login set no cookie")
	}
	// the cookie round-trips through the session parser
	parseReq := httptest.NewRequest(http.MethodGet, "/", nil)
	parseReq.AddCookie(cookies[0])
	if _, ok := sessions.Parse(parseReq); !ok {
		t.Fatalf("session cookie did not parse")
	}

	bad := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"new@test.fr","password":"wrong"}`))
	bw := httptest.NewRecorder()
	h.login(bw, bad)
	if bw.Code != http.StatusUnauthorized {
		t.Fatalf("bad password expected 401 got %d", bw.Code)
	}

	ow := httptest.NewRecorder()
	h.logout(ow, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if ow.Code != http.StatusOK {
		t.Fatalf("logout expected 200 got %d", ow.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewAuthHandler(db, auth.New("test-secret"))

	w := httptest.NewRecorder()
	h.signup(w, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"pas-un-email","password":""}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}
