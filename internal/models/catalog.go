package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is a reusable billable line kept in the user's catalog. It is
// copied by value into an invoice when added (no shared mutable reference).
type CatalogItem struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string // lignes séparées par '\n'
	Quantity    float64
	Unit        string          // ex: heure, jour, pièce
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LineItem copies the catalog entry into an invoice line with a derived total.
func (c *CatalogItem) LineItem(position int) LineItem {
	it := LineItem{
		Position:    position,
		Name:        c.Name,
		Description: c.Description,
		Quantity:    c.Quantity,
		Unit:        c.Unit,
		UnitPrice:   c.UnitPrice,
	}
	it.Recompute()
	return it
}
