package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maelj/facturio/internal/auth"
	"github.com/maelj/facturio/internal/httpx"
	"github.com/maelj/facturio/internal/models"
	"github.com/maelj/facturio/internal/pdf"
	"github.com/maelj/facturio/internal/services"
	"github.com/maelj/facturio/internal/store"
	"github.com/maelj/facturio/internal/validation"
)

type InvoiceHandler struct {
	DB       *gorm.DB
	History  *store.History
	Profiles *store.Profiles
	Svc      *services.InvoiceService
	Renderer *pdf.Renderer
}

func NewInvoiceHandler(db *gorm.DB, history *store.History, profiles *store.Profiles, svc *services.InvoiceService, renderer *pdf.Renderer) *InvoiceHandler {
	return &InvoiceHandler{DB: db, History: history, Profiles: profiles, Svc: svc, Renderer: renderer}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/invoices", h.listOrCreate)
	mux.HandleFunc("/invoices/next-number", h.nextNumber)
	mux.HandleFunc("/invoices/update", h.update)
	mux.HandleFunc("/invoices/finalize", h.finalize)
	mux.HandleFunc("/invoices/duplicate", h.duplicate)
	mux.HandleFunc("/invoices/pdf", h.exportPDF)
}

// itemPayload is the wire form of a line item. A catalog_item_id copies the
// catalog entry; otherwise the inline fields describe the line. Totals are
// never accepted from the client.
type itemPayload struct {
	CatalogItemID uint             `json:"catalog_item_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Quantity      float64          `json:"quantity"`
	Unit          string           `json:"unit"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

func (h *InvoiceHandler) buildItems(uid uint, payloads []itemPayload, v validation.Violations) []models.LineItem {
	items := make([]models.LineItem, 0, len(payloads))
	for i, p := range payloads {
		if p.CatalogItemID != 0 {
			var cat models.CatalogItem
			if err := h.DB.Where("user_id = ?", uid).First(&cat, p.CatalogItemID).Error; err != nil {
				v["items."+strconv.Itoa(i)+".catalog_item_id"] = "not_found"
				continue
			}
			items = append(items, cat.LineItem(len(items)))
			continue
		}
		validation.Required("items."+strconv.Itoa(i)+".name", p.Name, v)
		validation.PositiveFloat("items."+strconv.Itoa(i)+".quantity", p.Quantity, v)
		it := models.LineItem{
			Position:    len(items),
			Name:        strings.TrimSpace(p.Name),
			Description: p.Description,
			Quantity:    p.Quantity,
			Unit:        strings.TrimSpace(p.Unit),
		}
		if p.UnitPrice != nil {
			it.UnitPrice = *p.UnitPrice
		}
		validation.NonNegativeFloat("items."+strconv.Itoa(i)+".unit_price", it.UnitPrice.InexactFloat64(), v)
		it.Recompute()
		items = append(items, it)
	}
	return items
}

func (h *InvoiceHandler) listOrCreate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	dbq := h.DB.Where("user_id = ?", uid)
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status == models.InvoiceStatusDraft || status == models.InvoiceStatusFinalized {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	dbq.Model(&models.Invoice{}).Count(&total)
	var invoices []models.Invoice
	if err := dbq.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("id desc").
		Limit(pageSize).
		Offset(offset).
		Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total, "limit": pageSize, "offset": offset})
}

// create opens a new draft. The number is assigned here, up front, from the
// finalized history of the target month; any draft already holding that number
// comes back as a warning, not an error.
func (h *InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req struct {
		ClientID uint          `json:"client_id"`
		Items    []itemPayload `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	items := h.buildItems(uid, req.Items, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	now := time.Now()
	res, err := h.Svc.NextNumber(r.Context(), uid, now.Year(), now.Month())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "numbering_failed", nil)
		return
	}
	inv, err := h.Svc.CreateDraft(r.Context(), uid, res.Number)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_create_failed", nil)
		return
	}
	if req.ClientID != 0 || len(items) > 0 {
		inv.ClientID = req.ClientID
		inv.Items = items
		if err := h.History.UpsertInvoice(r.Context(), inv); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "invoice_create_failed", nil)
			return
		}
	}
	body := map[string]any{"invoice": inv}
	if res.HasConflict {
		body["warning"] = res.ConflictInfo
	}
	httpx.JSON(w, http.StatusCreated, body)
}

// nextNumber previews the number a new draft would receive, without reserving
// anything. Optional year/month query params target another month.
func (h *InvoiceHandler) nextNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	now := time.Now()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 9999 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_year", nil)
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_month", nil)
			return
		}
		month = time.Month(n)
	}
	res, err := h.Svc.NextNumber(r.Context(), uid, year, month)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "numbering_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"number": res.Number, "conflict": res.HasConflict, "conflict_info": res.ConflictInfo})
}

func (h *InvoiceHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*models.Invoice, uint, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, 0, false
	}
	inv, err := h.History.Get(r.Context(), uid, uint(id))
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, 0, false
	}
	return inv, uid, true
}

// update edits the date/term group and the item list of a draft. Finalized
// invoices are immutable.
func (h *InvoiceHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, uid, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if inv.Finalized() {
		httpx.JSONError(w, http.StatusConflict, "invoice_not_editable", nil)
		return
	}
	var req struct {
		InvoiceDate  *string        `json:"invoice_date"`  // 2006-01-02
		DeliveryDate *string        `json:"delivery_date"` // 2006-01-02
		PaymentTerms *string        `json:"payment_terms"`
		ClientID     *uint          `json:"client_id"`
		Items        *[]itemPayload `json:"items"` // nil keeps, non-nil replaces
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var up services.DraftUpdate
	v := validation.Violations{}
	if req.InvoiceDate != nil {
		d, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			v["invoice_date"] = "invalid_date"
		} else {
			up.InvoiceDate = &d
		}
	}
	if req.DeliveryDate != nil {
		d, err := time.Parse("2006-01-02", *req.DeliveryDate)
		if err != nil {
			v["delivery_date"] = "invalid_date"
		} else {
			up.DeliveryDate = &d
		}
	}
	up.PaymentTerms = req.PaymentTerms
	if req.ClientID != nil {
		inv.ClientID = *req.ClientID
	}
	if req.Items != nil {
		inv.Items = h.buildItems(uid, *req.Items, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Svc.UpdateDraft(r.Context(), inv, up); err != nil {
		if errors.Is(err, services.ErrNotDraft) {
			httpx.JSONError(w, http.StatusConflict, "invoice_not_editable", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// finalize runs the one-way transition: the live profile is snapshotted and
// saved first, then seller/buyer are frozen into the invoice.
func (h *InvoiceHandler) finalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, uid, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if inv.Finalized() {
		httpx.JSONError(w, http.StatusConflict, "invoice_already_finalized", nil)
		return
	}
	if len(inv.Items) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "empty_invoice", nil)
		return
	}
	profile, err := h.Profiles.GetProfile(r.Context(), uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_load_failed", nil)
		return
	}
	if profile == nil {
		httpx.JSONError(w, http.StatusBadRequest, "company_not_configured", nil)
		return
	}
	if inv.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "client_required", nil)
		return
	}
	var client models.Client
	if err := h.DB.Where("user_id = ?", uid).First(&client, inv.ClientID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "client_not_found", nil)
		return
	}
	snap := services.ProfileSnapshot{Profile: *profile}
	if err := h.DB.Where("user_id = ?", uid).Find(&snap.Clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_load_failed", nil)
		return
	}
	if err := h.DB.Where("user_id = ?", uid).Find(&snap.Catalog).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profile_load_failed", nil)
		return
	}

	if err := h.Svc.Finalize(r.Context(), inv, client, snap); err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyFinalized):
			httpx.JSONError(w, http.StatusConflict, "invoice_already_finalized", nil)
		case errors.Is(err, services.ErrProfileSaveFailed):
			httpx.JSONError(w, http.StatusInternalServerError, "profile_save_failed", nil)
		case errors.Is(err, services.ErrMissingIdentity):
			httpx.JSONError(w, http.StatusBadRequest, "invoice_missing_identity", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "finalize_failed", nil)
		}
		return
	}

	// best-effort audit trail; the finalize itself already committed
	h.DB.Create(&models.AuditLog{UserID: uid, EntityType: "invoice", EntityID: inv.ID, Action: "finalize", Detail: inv.Number})
	httpx.JSON(w, http.StatusOK, inv)
}

// duplicate rebuilds a fresh draft from any saved invoice, with a fresh number
// for the current month so it cannot collide with its source.
func (h *InvoiceHandler) duplicate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	src, uid, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	draft := h.Svc.LoadAsTemplate(*src)
	draft.ClientID = src.ClientID
	now := time.Now()
	res, err := h.Svc.NextNumber(r.Context(), uid, now.Year(), now.Month())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "numbering_failed", nil)
		return
	}
	draft.Number = res.Number
	if err := h.History.UpsertInvoice(r.Context(), &draft); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_create_failed", nil)
		return
	}
	body := map[string]any{"invoice": draft}
	if res.HasConflict {
		body["warning"] = res.ConflictInfo
	}
	httpx.JSON(w, http.StatusCreated, body)
}

func (h *InvoiceHandler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, _, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	out, err := h.Renderer.Render(inv)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_render_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.Filename(inv.Number)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	if _, err := w.Write(out); err != nil {
		return
	}
}
