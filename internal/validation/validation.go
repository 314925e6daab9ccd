package validation

import (
	"strings"

	"github.com/maelj/facturio/internal/format"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

// SIRET accepts an empty value (optional field) or exactly 14 digits.
func SIRET(field, value string, v Violations) {
	if !format.ValidSIRET(value) {
		v[field] = "invalid_siret"
	}
}

// Email accepts an empty value or a plausibly shaped address.
func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if !format.ValidEmail(value) {
		v[field] = "invalid_email"
	}
}
