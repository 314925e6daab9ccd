package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice lifecycle states. There is no void/cancel state: a finalized
// invoice is terminal and immutable.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusFinalized = "finalized"
)

// Payment terms (délai de paiement), days from invoice date.
const (
	Term10Days = "10 jours à réception"
	Term20Days = "20 jours à réception"
	Term30Days = "30 jours à réception"
)

// Invoicing models
type Invoice struct {
	ID           uint      `gorm:"primaryKey"`
	Reference    uuid.UUID `gorm:"type:uuid;uniqueIndex"` // identifiant public opaque, stable
	UserID       uint      `gorm:"not null;index"`
	User         User      `gorm:"foreignKey:UserID"`
	ClientID     uint      `gorm:"index"` // client facturé; résolu à la finalisation
	Number       string    `gorm:"size:12;index"` // format YYYY-MM-NNNN
	Status       string    `gorm:"not null;default:'draft'"`
	InvoiceDate  time.Time `gorm:"not null"`
	DeliveryDate time.Time `gorm:"not null"`
	PaymentTerms string    `gorm:"not null;default:'30 jours à réception'"`
	PaymentDue   time.Time
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2)"`
	// Émetteur et client figés par valeur à la finalisation (snapshot).
	Seller      Party      `gorm:"embedded;embeddedPrefix:seller_"`
	Buyer       Party      `gorm:"embedded;embeddedPrefix:buyer_"`
	Items       []LineItem `gorm:"foreignKey:InvoiceID"`
	FinalizedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (inv *Invoice) BeforeCreate(_ *gorm.DB) error {
	if inv.Reference == uuid.Nil {
		inv.Reference = uuid.New()
	}
	return nil
}

func (inv *Invoice) Finalized() bool { return inv.Status == InvoiceStatusFinalized }

// ItemsTotal sums line totals. Line totals themselves are always derived
// (quantity × unit price), see LineItem.Recompute.
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range inv.Items {
		total = total.Add(it.Total)
	}
	return total
}

type LineItem struct {
	ID        uint   `gorm:"primaryKey"`
	InvoiceID uint   `gorm:"not null;index"`
	Position  int    `gorm:"not null"` // ordre d'affichage
	Name      string `gorm:"not null"`
	// Description multi-lignes, séparées par '\n', rendues sous le nom.
	Description string
	Quantity    float64         `gorm:"not null"`
	Unit        string          // pluralisé à l'affichage quand Quantity > 1
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2)"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2)"` // dérivé, jamais saisi
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Recompute derives Total from Quantity and UnitPrice. It is the only way
// Total changes.
func (it *LineItem) Recompute() {
	it.Total = it.UnitPrice.Mul(decimal.NewFromFloat(it.Quantity)).Round(2)
}

// DescriptionLines splits the stored description into its rendered sub-lines.
// An empty description yields no lines.
func (it *LineItem) DescriptionLines() []string {
	if strings.TrimSpace(it.Description) == "" {
		return nil
	}
	return strings.Split(it.Description, "\n")
}
