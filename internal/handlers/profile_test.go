package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maelj/facturio/internal/models"
	"github.com/maelj/facturio/internal/services"
	"github.com/maelj/facturio/internal/store"
)

func TestProfileSaveAndGet(t *testing.T) {
	db := setupHandlerDB(t)
	role := models.Role{Name: "user"}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user := models.User{Email: "p@test", Password: "x", RoleID: role.ID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	profiles := store.NewProfiles(db)
	h := NewProfileHandler(db, profiles, services.NewProfileService(profiles))

	// not configured yet
	getW := httptest.NewRecorder()
	h.getOrSave(getW, authed(httptest.NewRequest(http.MethodGet, "/profile", nil), user.ID))
	if getW.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before setup got %d", getW.Code)
	}

	body := `{"raison_sociale":"Atelier Dupont","ligne1":"1 rue de la Paix","code_postal":"75002","ville":"Paris","siret":"123 456 789 00011","iban":"FR76 3000 1007 9412 3456 7890 185","bic":"BDFEFRPP","titulaire":"Atelier Dupont"}`
	saveW := httptest.NewRecorder()
	h.getOrSave(saveW, authed(httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(body)), user.ID))
	if saveW.Code != http.StatusOK {
		t.Fatalf("save expected 200 got %d body=%s", saveW.Code, saveW.Body.String())
	}
	var saved models.CompanyProfile
	if err := json.Unmarshal(saveW.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.SIRET != "12345678900011" {
		t.Fatalf("siret not normalized: %q", saved.SIRET)
	}
	if strings.Contains(saved.IBAN, " ") {
		t.Fatalf("iban not normalized: %q", saved.IBAN)
	}

	// saving again updates the same row, never a second profile
	body2 := `{"raison_sociale":"Atelier Dupont SARL","siret":"12345678900011"}`
	save2 := httptest.NewRecorder()
	h.getOrSave(save2, authed(httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(body2)), user.ID))
	if save2.Code != http.StatusOK {
		t.Fatalf("second save expected 200 got %d body=%s", save2.Code, save2.Body.String())
	}
	var count int64
	db.Model(&models.CompanyProfile{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("profiles = %d, want 1", count)
	}

	get2 := httptest.NewRecorder()
	h.getOrSave(get2, authed(httptest.NewRequest(http.MethodGet, "/profile", nil), user.ID))
	var reloaded models.CompanyProfile
	if err := json.Unmarshal(get2.Body.Bytes(), &reloaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reloaded.RaisonSociale != "Atelier Dupont SARL" {
		t.Fatalf("raison sociale = %q", reloaded.RaisonSociale)
	}
}

func TestProfileValidation(t *testing.T) {
	db := setupHandlerDB(t)
	user, _, _, _ := seedInvoiceFixtures(t, db)
	profiles := store.NewProfiles(db)
	h := NewProfileHandler(db, profiles, services.NewProfileService(profiles))

	w := httptest.NewRecorder()
	h.getOrSave(w, authed(httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(`{"raison_sociale":"","siret":"abc"}`)), user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
