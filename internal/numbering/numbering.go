// Package numbering computes sequential invoice numbers of the form
// YYYY-MM-NNNN from a user's invoice history.
//
// The sequence starts at 12 for the first invoice of any month and is never
// backfilled: with finalized sequences {12, 13, 15} the next number is 16.
// Both choices preserve continuity with pre-existing histories.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maelj/facturio/internal/models"
)

// firstSequence is the sequence assigned to the first invoice of a month.
const firstSequence = 12

// Result carries the computed number plus an advisory conflict warning when a
// draft already exists for the target month. The warning never blocks the
// caller.
type Result struct {
	Number       string
	HasConflict  bool
	ConflictInfo string
}

// NextNumber computes the next invoice number for the given month from the
// supplied history. Pure: it never mutates history and never fails, malformed
// numbers in the history count as sequence 0.
func NextNumber(history []models.Invoice, year int, month time.Month) Result {
	prefix := fmt.Sprintf("%d-%02d-", year, int(month))

	maxSeq := firstSequence - 1
	for _, inv := range history {
		if inv.Status != models.InvoiceStatusFinalized {
			continue
		}
		if !strings.HasPrefix(inv.Number, prefix) {
			continue
		}
		if seq := sequenceOf(inv.Number); seq > maxSeq {
			maxSeq = seq
		}
	}

	res := Result{Number: fmt.Sprintf("%s%04d", prefix, maxSeq+1)}

	for _, inv := range history {
		if inv.Status == models.InvoiceStatusDraft && strings.HasPrefix(inv.Number, prefix) {
			res.HasConflict = true
			res.ConflictInfo = fmt.Sprintf("un brouillon existe déjà pour ce mois (n° %s)", inv.Number)
			break
		}
	}
	return res
}

// sequenceOf extracts the third dash-delimited segment as an integer.
// Malformed numbers (wrong segment count, non-numeric) yield 0.
func sequenceOf(number string) int {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return 0
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return seq
}
