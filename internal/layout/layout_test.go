package layout

import "testing"

// Small geometry used by most tests: no preamble, no bottom padding, so the
// numbers stay readable.
func testConfig() Config {
	return Config{
		PageBudget:         50,
		FirstPageTop:       0,
		NextPageTop:        0,
		TableHeaderHeight:  10,
		SummaryHeight:      15,
		PaymentBlockHeight: 20,
		BottomPadding:      0,
		LineHeight:         5,
		MinRowHeight:       20,
		RowPadding:         5,
	}
}

func items(n int) []Item {
	out := make([]Item, n)
	return out // zero description lines: MinRowHeight applies
}

func TestItemHeight(t *testing.T) {
	cfg := testConfig()
	if h := cfg.ItemHeight(Item{DescriptionLines: 0}); h != 20 {
		t.Fatalf("floor at MinRowHeight, got %v", h)
	}
	if h := cfg.ItemHeight(Item{DescriptionLines: 10}); h != 55 {
		t.Fatalf("10*5+5 = 55, got %v", h)
	}
}

func TestBoundaryFitIsInclusive(t *testing.T) {
	// 3 items of height 20, budget 50, header 10:
	// page 1: header(10) + item0 (=30) + item1 (=50, lands exactly on the
	// edge and must be accepted), page 2: header + item2.
	plan := Paginate(items(3), testConfig())
	if len(plan.Pages) != 2 {
		t.Fatalf("expected 2 item pages, got %d", len(plan.Pages))
	}
	if got := len(plan.Pages[0].Rows); got != 2 {
		t.Fatalf("item landing exactly at the budget edge must be accepted, page 1 has %d rows", got)
	}
	if got := len(plan.Pages[1].Rows); got != 1 {
		t.Fatalf("page 2 rows: %d", got)
	}
	if plan.Pages[1].Rows[0].Index != 2 {
		t.Fatalf("order must be preserved, got index %d", plan.Pages[1].Rows[0].Index)
	}
}

func TestRowOffsets(t *testing.T) {
	plan := Paginate(items(3), testConfig())
	p1 := plan.Pages[0]
	if p1.HeaderY != 0 || p1.TableTop != 10 {
		t.Fatalf("header at %v, table top at %v", p1.HeaderY, p1.TableTop)
	}
	if p1.Rows[0].Y != 10 || p1.Rows[1].Y != 30 {
		t.Fatalf("rows at %v and %v", p1.Rows[0].Y, p1.Rows[1].Y)
	}
	if p1.TableBottom != 50 {
		t.Fatalf("table bottom %v", p1.TableBottom)
	}
}

func TestOversizedItemForcedOntoOwnPage(t *testing.T) {
	cfg := testConfig()
	one := []Item{{DescriptionLines: 30}} // 30*5+5 = 155 > budget
	plan := Paginate(one, cfg)
	if len(plan.Pages) != 1 || len(plan.Pages[0].Rows) != 1 {
		t.Fatalf("oversized item must still be placed, pages=%d", len(plan.Pages))
	}

	// Same oversized item after a normal one: it closes page 1 and is
	// forced alone onto page 2.
	two := []Item{{}, {DescriptionLines: 30}}
	plan = Paginate(two, cfg)
	if len(plan.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(plan.Pages))
	}
	if len(plan.Pages[1].Rows) != 1 || plan.Pages[1].Rows[0].Index != 1 {
		t.Fatalf("oversized item must sit alone on page 2: %+v", plan.Pages[1].Rows)
	}
}

func TestZeroItemsStillProducesOnePage(t *testing.T) {
	plan := Paginate(nil, testConfig())
	if len(plan.Pages) != 1 {
		t.Fatalf("degenerate input still renders a page, got %d", len(plan.Pages))
	}
	p := plan.Pages[0]
	if len(p.Rows) != 0 {
		t.Fatalf("no rows expected")
	}
	if p.TableBottom != p.TableTop {
		t.Fatalf("empty body: bottom %v top %v", p.TableBottom, p.TableTop)
	}
	if !p.SummaryFits {
		t.Fatal("summary trivially fits under an empty table")
	}
	if plan.TotalPages != 1 {
		t.Fatalf("total pages %d", plan.TotalPages)
	}
}

func TestSummaryOverflowAddsOnePage(t *testing.T) {
	// Page 1 ends at 50 (full); summary (15) cannot fit: it moves to its
	// own page together with the payment block.
	plan := Paginate(items(2), testConfig())
	if len(plan.Pages) != 1 {
		t.Fatalf("item pages: %d", len(plan.Pages))
	}
	if plan.Pages[0].SummaryFits {
		t.Fatal("summary cannot fit after a full page")
	}
	if plan.SummaryOnLastPage {
		t.Fatal("summary must move to a fresh page")
	}
	if !plan.PaymentOnSummaryPage {
		t.Fatal("payment block rides along with the overflowed summary")
	}
	if plan.TotalPages != 2 {
		t.Fatalf("total pages %d", plan.TotalPages)
	}
	if plan.SummaryY != 0 || plan.PaymentY != 15 {
		t.Fatalf("summary at %v, payment at %v", plan.SummaryY, plan.PaymentY)
	}
}

func TestPaymentOverflowAddsOnePage(t *testing.T) {
	// One item: page ends at 30. Summary fits (30+15=45 <= 50) but the
	// payment block does not (45+20=65 > 50) and gets its own page.
	plan := Paginate(items(1), testConfig())
	if !plan.SummaryOnLastPage {
		t.Fatal("summary fits on the item page")
	}
	if plan.SummaryY != 30 {
		t.Fatalf("summary y %v", plan.SummaryY)
	}
	if plan.PaymentOnSummaryPage {
		t.Fatal("payment block must overflow")
	}
	if plan.TotalPages != 2 {
		t.Fatalf("total pages %d", plan.TotalPages)
	}
}

func TestEverythingOnOnePage(t *testing.T) {
	cfg := testConfig()
	cfg.PageBudget = 100
	plan := Paginate(items(1), cfg)
	if plan.TotalPages != 1 || !plan.SummaryOnLastPage || !plan.PaymentOnSummaryPage {
		t.Fatalf("expected single page plan: %+v", plan)
	}
	if plan.PaymentY != plan.SummaryY+cfg.SummaryHeight {
		t.Fatalf("payment block follows the summary, got %v", plan.PaymentY)
	}
}

func TestFirstPagePreambleReducesCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.FirstPageTop = 20
	// Page 1 starts at 20: header to 30, one item to 50. The second item
	// spills to page 2 which starts at 0 and holds it.
	plan := Paginate(items(2), cfg)
	if len(plan.Pages) != 2 {
		t.Fatalf("pages: %d", len(plan.Pages))
	}
	if len(plan.Pages[0].Rows) != 1 || len(plan.Pages[1].Rows) != 1 {
		t.Fatalf("rows split %d/%d", len(plan.Pages[0].Rows), len(plan.Pages[1].Rows))
	}
	if plan.Pages[1].HeaderY != 0 {
		t.Fatalf("subsequent pages start at NextPageTop, got %v", plan.Pages[1].HeaderY)
	}
}

func TestCheckPageCountPanicsOnMismatch(t *testing.T) {
	plan := Paginate(items(1), testConfig())
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on page count mismatch")
		}
	}()
	plan.CheckPageCount(plan.TotalPages + 1)
}

func TestManyItemsPageCountAgreesWithPacking(t *testing.T) {
	cfg := A4()
	for n := 0; n <= 60; n += 7 {
		in := make([]Item, n)
		for i := range in {
			in[i].DescriptionLines = i % 5
		}
		plan := Paginate(in, cfg)
		placed := 0
		for _, p := range plan.Pages {
			placed += len(p.Rows)
		}
		if placed != n {
			t.Fatalf("n=%d: placed %d", n, placed)
		}
		want := len(plan.Pages)
		if !plan.SummaryOnLastPage || !plan.PaymentOnSummaryPage {
			want++
		}
		if plan.TotalPages != want {
			t.Fatalf("n=%d: total %d want %d", n, plan.TotalPages, want)
		}
	}
}
