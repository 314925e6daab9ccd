// Package store provides the gorm-backed implementations of the persistence
// collaborators consumed by the services package.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/maelj/facturio/internal/models"
	"github.com/maelj/facturio/internal/services"
)

// History persists the per-user invoice history.
type History struct {
	DB *gorm.DB
}

func NewHistory(db *gorm.DB) *History { return &History{DB: db} }

var _ services.HistoryStore = (*History)(nil)

func (s *History) ListInvoices(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&invs).Error
	return invs, err
}

// UpsertInvoice writes the invoice and replaces its line items wholesale.
// Items carry no identity of their own across saves; the invoice is the
// aggregate root.
func (s *History) UpsertInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := inv.Items
		inv.Items = nil
		defer func() { inv.Items = items }()

		if inv.ID == 0 {
			if err := tx.Create(inv).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(inv).Error; err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].ID = 0
			items[i].InvoiceID = inv.ID
			items[i].Position = i
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Get loads one invoice with its items, scoped to the owning user.
func (s *History) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("user_id = ?", userID).
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Profiles persists company profile snapshots.
type Profiles struct {
	DB *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles { return &Profiles{DB: db} }

var _ services.ProfileStore = (*Profiles)(nil)

// SaveProfile upserts the company profile (one per user) and saves the
// accompanying client and catalog records in one transaction.
func (s *Profiles) SaveProfile(ctx context.Context, snap services.ProfileSnapshot) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := snap.Profile
		var existing models.CompanyProfile
		err := tx.Where("user_id = ?", profile.UserID).First(&existing).Error
		switch {
		case err == nil:
			profile.ID = existing.ID
			profile.CreatedAt = existing.CreatedAt
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		default:
			return err
		}

		for i := range snap.Clients {
			if err := tx.Save(&snap.Clients[i]).Error; err != nil {
				return err
			}
		}
		for i := range snap.Catalog {
			if err := tx.Save(&snap.Catalog[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetProfile returns the user's company profile, nil when not configured yet.
func (s *Profiles) GetProfile(ctx context.Context, userID uint) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
