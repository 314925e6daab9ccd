// Package format groups the display formatting and validation helpers shared
// by the PDF renderer and the HTTP boundary: phone/SIRET/IBAN grouping,
// currency and date rendering, unit pluralization.
package format

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	digitsOnly = regexp.MustCompile(`[^0-9]`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// EUR renders an amount with two decimals and the euro sign, e.g. "150.00 €".
func EUR(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " €"
}

// Date renders a calendar date in day/month/year order.
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// Phone groups a French phone number in digit pairs: "0612345678" ->
// "06 12 34 56 78". Input that is not exactly 10 digits is returned as-is.
func Phone(raw string) string {
	digits := digitsOnly.ReplaceAllString(raw, "")
	if len(digits) != 10 {
		return raw
	}
	pairs := make([]string, 0, 5)
	for i := 0; i < 10; i += 2 {
		pairs = append(pairs, digits[i:i+2])
	}
	return strings.Join(pairs, " ")
}

// SIRET groups a 14-digit SIRET as 3-3-3-5: "12345678900011" ->
// "123 456 789 00011". Anything else is returned unchanged.
func SIRET(raw string) string {
	digits := digitsOnly.ReplaceAllString(raw, "")
	if len(digits) != 14 {
		return raw
	}
	return digits[0:3] + " " + digits[3:6] + " " + digits[6:9] + " " + digits[9:14]
}

// ValidSIRET reports whether raw is exactly 14 digits (spacing ignored).
// Empty input is valid: the field is optional.
func ValidSIRET(raw string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return true
	}
	if len(s) != 14 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IBAN groups an IBAN in blocks of 4: "FR7630006000011234567890189" ->
// "FR76 3000 6000 0112 3456 7890 189".
func IBAN(raw string) string {
	compact := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if compact == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range compact {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidEmail does a light shape check; real validation happens by sending
// mail, which is out of our hands.
func ValidEmail(raw string) bool {
	return emailRe.MatchString(strings.TrimSpace(raw))
}

// PluralizeUnit appends an "s" to the unit when the quantity calls for it:
// 2 × "heure" -> "heures". Units already ending in "s" are left alone.
func PluralizeUnit(unit string, quantity float64) string {
	if unit == "" || quantity <= 1 {
		return unit
	}
	if strings.HasSuffix(unit, "s") {
		return unit
	}
	return unit + "s"
}
