package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEUR(t *testing.T) {
	if got := EUR(decimal.NewFromFloat(1234.5)); got != "1234.50 €" {
		t.Fatalf("EUR: got %q", got)
	}
	if got := EUR(decimal.Zero); got != "0.00 €" {
		t.Fatalf("EUR zero: got %q", got)
	}
}

func TestDate(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := Date(d); got != "01/03/2024" {
		t.Fatalf("Date: got %q", got)
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"0612345678":     "06 12 34 56 78",
		"06 12 34 56 78": "06 12 34 56 78",
		"06.12.34.56.78": "06 12 34 56 78",
		"12345":          "12345", // not 10 digits: unchanged
		"":               "",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Fatalf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSIRET(t *testing.T) {
	if got := SIRET("12345678900011"); got != "123 456 789 00011" {
		t.Fatalf("SIRET: got %q", got)
	}
	if got := SIRET("123"); got != "123" {
		t.Fatalf("SIRET short: got %q", got)
	}
}

func TestValidSIRET(t *testing.T) {
	if !ValidSIRET("12345678900011") {
		t.Fatal("expected valid")
	}
	if !ValidSIRET("123 456 789 00011") {
		t.Fatal("expected valid with spaces")
	}
	if !ValidSIRET("") {
		t.Fatal("empty is valid (optional field)")
	}
	if ValidSIRET("1234567890001") {
		t.Fatal("13 digits should be invalid")
	}
	if ValidSIRET("1234567890001a") {
		t.Fatal("letters should be invalid")
	}
}

func TestIBAN(t *testing.T) {
	if got := IBAN("FR7630006000011234567890189"); got != "FR76 3000 6000 0112 3456 7890 189" {
		t.Fatalf("IBAN: got %q", got)
	}
	if got := IBAN("  fr76 3000  "); got != "FR76 3000" {
		t.Fatalf("IBAN normalize: got %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("a@b.fr") {
		t.Fatal("expected valid")
	}
	if ValidEmail("not-an-email") {
		t.Fatal("expected invalid")
	}
}

func TestPluralizeUnit(t *testing.T) {
	if got := PluralizeUnit("heure", 2); got != "heures" {
		t.Fatalf("got %q", got)
	}
	if got := PluralizeUnit("heure", 1); got != "heure" {
		t.Fatalf("got %q", got)
	}
	if got := PluralizeUnit("mois", 3); got != "mois" {
		t.Fatalf("got %q", got)
	}
	if got := PluralizeUnit("", 3); got != "" {
		t.Fatalf("got %q", got)
	}
}
