package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/maelj/facturio/internal/auth"
	"github.com/maelj/facturio/internal/httpx"
	"github.com/maelj/facturio/internal/models"
	"github.com/maelj/facturio/internal/services"
	"github.com/maelj/facturio/internal/store"
	"github.com/maelj/facturio/internal/validation"
)

// ProfileHandler exposes the company profile (one per user). Saving goes
// through ProfileService.Flush, the same path the finalize snapshot uses.
type ProfileHandler struct {
	DB       *gorm.DB
	Profiles *store.Profiles
	Svc      *services.ProfileService
}

func NewProfileHandler(db *gorm.DB, profiles *store.Profiles, svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{DB: db, Profiles: profiles, Svc: svc}
}

func (h *ProfileHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/profile", h.getOrSave)
}

func (h *ProfileHandler) getOrSave(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost, http.MethodPut:
		h.save(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	profile, err := h.Profiles.GetProfile(r.Context(), uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_load_failed", nil)
		return
	}
	if profile == nil {
		httpx.JSONError(w, http.StatusNotFound, "company_not_configured", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) save(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req struct {
		RaisonSociale string `json:"raison_sociale"`
		Ligne1        string `json:"ligne1"`
		Ligne2        string `json:"ligne2"`
		CodePostal    string `json:"code_postal"`
		Ville         string `json:"ville"`
		Pays          string `json:"pays"`
		Telephone     string `json:"telephone"`
		Email         string `json:"email"`
		SIRET         string `json:"siret"`
		Titulaire     string `json:"titulaire"`
		BIC           string `json:"bic"`
		IBAN          string `json:"iban"`
		Banque        string `json:"banque"`
		LogoPath      string `json:"logo_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("raison_sociale", req.RaisonSociale, v)
	validation.SIRET("siret", req.SIRET, v)
	validation.Email("email", req.Email, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	profile := models.CompanyProfile{
		UserID:        uid,
		RaisonSociale: strings.TrimSpace(req.RaisonSociale),
		Ligne1:        req.Ligne1,
		Ligne2:        req.Ligne2,
		CodePostal:    strings.TrimSpace(req.CodePostal),
		Ville:         strings.TrimSpace(req.Ville),
		Pays:          strings.TrimSpace(req.Pays),
		Telephone:     strings.TrimSpace(req.Telephone),
		Email:         strings.TrimSpace(req.Email),
		SIRET:         strings.ReplaceAll(strings.TrimSpace(req.SIRET), " ", ""),
		Titulaire:     strings.TrimSpace(req.Titulaire),
		BIC:           strings.TrimSpace(req.BIC),
		IBAN:          strings.ReplaceAll(strings.TrimSpace(req.IBAN), " ", ""),
		Banque:        strings.TrimSpace(req.Banque),
		LogoPath:      strings.TrimSpace(req.LogoPath),
	}
	if err := h.Svc.Flush(r.Context(), services.ProfileSnapshot{Profile: profile}); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_save_failed", nil)
		return
	}
	saved, err := h.Profiles.GetProfile(r.Context(), uid)
	if err != nil || saved == nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_load_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
