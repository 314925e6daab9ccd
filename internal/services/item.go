package services

import (
	"github.com/shopspring/decimal"

	"github.com/maelj/facturio/internal/models"
)

// ItemUpdate is the explicit command for mutating one line item. Nil fields
// are left untouched. There is deliberately no Total field: the total is
// derived, never settable.
type ItemUpdate struct {
	Name        *string
	Description *string
	Quantity    *float64
	Unit        *string
	UnitPrice   *decimal.Decimal
}

// ApplyItemUpdate is a pure reducer: it returns a new line item with the
// command applied and the total recomputed from quantity × unit price.
func ApplyItemUpdate(it models.LineItem, up ItemUpdate) models.LineItem {
	next := it
	if up.Name != nil {
		next.Name = *up.Name
	}
	if up.Description != nil {
		next.Description = *up.Description
	}
	if up.Quantity != nil {
		next.Quantity = *up.Quantity
	}
	if up.Unit != nil {
		next.Unit = *up.Unit
	}
	if up.UnitPrice != nil {
		next.UnitPrice = *up.UnitPrice
	}
	next.Recompute()
	return next
}
