package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maelj/facturio/internal/models"
	"github.com/maelj/facturio/internal/numbering"
)

// HistoryStore is the persistence collaborator for the invoice history,
// keyed by invoice id and scoped to one user.
type HistoryStore interface {
	ListInvoices(ctx context.Context, userID uint) ([]models.Invoice, error)
	UpsertInvoice(ctx context.Context, inv *models.Invoice) error
}

// ProfileSnapshot bundles the live profile state saved just before an invoice
// is finalized, so the party data embedded in the invoice matches what is now
// stored as the user's defaults.
type ProfileSnapshot struct {
	Profile models.CompanyProfile
	Clients []models.Client
	Catalog []models.CatalogItem
}

// ProfileStore persists profile snapshots.
type ProfileStore interface {
	SaveProfile(ctx context.Context, snap ProfileSnapshot) error
}

var (
	ErrAlreadyFinalized  = errors.New("invoice_already_finalized")
	ErrNotDraft          = errors.New("invoice_not_draft")
	ErrMissingIdentity   = errors.New("invoice_missing_identity")
	ErrProfileSaveFailed = errors.New("profile_save_failed")
)

// InvoiceService owns the draft → finalized lifecycle. Finalization is
// one-way and at-most-once; there is no unfinalize.
type InvoiceService struct {
	history HistoryStore
	profile ProfileStore
	// requirePersistence: when set, a failing pre-finalize profile save
	// aborts finalization instead of proceeding with unsaved defaults.
	requirePersistence bool
	now                func() time.Time
}

func NewInvoiceService(history HistoryStore, profile ProfileStore, requirePersistence bool) *InvoiceService {
	return &InvoiceService{history: history, profile: profile, requirePersistence: requirePersistence, now: time.Now}
}

// NextNumber computes the next number for the month from the user's history,
// including the advisory draft-conflict warning.
func (s *InvoiceService) NextNumber(ctx context.Context, userID uint, year int, month time.Month) (numbering.Result, error) {
	history, err := s.history.ListInvoices(ctx, userID)
	if err != nil {
		return numbering.Result{}, err
	}
	return numbering.NextNumber(history, year, month), nil
}

// CreateDraft opens a new draft with the supplied number (typically from
// NextNumber), today's dates and the default 30-day term.
func (s *InvoiceService) CreateDraft(ctx context.Context, userID uint, number string) (*models.Invoice, error) {
	today := s.now().Truncate(24 * time.Hour)
	inv := &models.Invoice{
		UserID:       userID,
		Number:       number,
		Status:       models.InvoiceStatusDraft,
		InvoiceDate:  today,
		DeliveryDate: today,
		PaymentTerms: models.Term30Days,
		PaymentDue:   PaymentDue(today, models.Term30Days),
	}
	if err := s.history.UpsertInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// TermDays maps "N jours à réception" to N by taking the leading integer
// token. Unparseable terms default to 30.
func TermDays(term string) int {
	fields := strings.Fields(strings.TrimSpace(term))
	if len(fields) == 0 {
		return 30
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 30
	}
	return n
}

// PaymentDue adds the term's days to the invoice date. Calendar days, not
// business days.
func PaymentDue(invoiceDate time.Time, term string) time.Time {
	return invoiceDate.AddDate(0, 0, TermDays(term))
}

// DraftUpdate is the explicit command for the date/term field group of a
// draft. Nil fields are left untouched.
type DraftUpdate struct {
	InvoiceDate  *time.Time
	DeliveryDate *time.Time
	PaymentTerms *string
}

// UpdateDraft applies the command to a draft and persists it. PaymentDue is
// always recomputed from the resulting date and term.
func (s *InvoiceService) UpdateDraft(ctx context.Context, inv *models.Invoice, up DraftUpdate) error {
	if inv.Finalized() {
		return ErrNotDraft
	}
	next := *inv
	if up.InvoiceDate != nil {
		next.InvoiceDate = *up.InvoiceDate
	}
	if up.DeliveryDate != nil {
		next.DeliveryDate = *up.DeliveryDate
	}
	if up.PaymentTerms != nil {
		next.PaymentTerms = *up.PaymentTerms
	}
	next.PaymentDue = PaymentDue(next.InvoiceDate, next.PaymentTerms)
	if err := s.history.UpsertInvoice(ctx, &next); err != nil {
		return err
	}
	*inv = next
	return nil
}

// Finalize performs the one-way transition. The profile snapshot is saved
// first: when that fails under requirePersistence the invoice keeps its draft
// state untouched. A second call on a finalized invoice is rejected without
// touching FinalizedAt.
func (s *InvoiceService) Finalize(ctx context.Context, inv *models.Invoice, client models.Client, snap ProfileSnapshot) error {
	if inv.Finalized() {
		return ErrAlreadyFinalized
	}
	if inv.Status != models.InvoiceStatusDraft {
		return ErrNotDraft
	}
	if inv.ID == 0 || inv.UserID == 0 {
		return ErrMissingIdentity
	}

	if err := s.profile.SaveProfile(ctx, snap); err != nil {
		if s.requirePersistence {
			return fmt.Errorf("%w: %v", ErrProfileSaveFailed, err)
		}
		// persistence optional: proceed with in-memory party data
	}

	// Work on a copy so a failed persist leaves the draft untouched.
	next := *inv
	next.Items = make([]models.LineItem, len(inv.Items))
	copy(next.Items, inv.Items)
	for i := range next.Items {
		next.Items[i].Recompute()
	}
	next.Seller = snap.Profile.Party()
	next.Buyer = client.Party()
	next.TotalAmount = next.ItemsTotal()
	next.Status = models.InvoiceStatusFinalized
	now := s.now()
	next.FinalizedAt = &now

	if err := s.history.UpsertInvoice(ctx, &next); err != nil {
		return err
	}
	*inv = next
	return nil
}

// LoadAsTemplate rebuilds editable draft state from any saved invoice,
// whatever its status. The copy has no identity and no number: the caller
// must request a fresh number before finalizing it, or it would collide with
// the source.
func (s *InvoiceService) LoadAsTemplate(saved models.Invoice) models.Invoice {
	draft := models.Invoice{
		UserID:       saved.UserID,
		Status:       models.InvoiceStatusDraft,
		InvoiceDate:  saved.InvoiceDate,
		DeliveryDate: saved.DeliveryDate,
		PaymentTerms: saved.PaymentTerms,
		PaymentDue:   saved.PaymentDue,
		Seller:       saved.Seller,
		Buyer:        saved.Buyer,
	}
	draft.Items = make([]models.LineItem, len(saved.Items))
	for i, it := range saved.Items {
		draft.Items[i] = models.LineItem{
			Position:    it.Position,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
		}
		draft.Items[i].Recompute()
	}
	return draft
}
