// Package layout paginates a variable-length invoice line-item table onto
// fixed-height pages.
//
// The packing is greedy and order-preserving: each page gets a table header,
// items are never split across pages, and whether the summary box and the
// payment/legal block fit on the last item page is decided here, at pack
// time. The renderer draws exactly what the Plan says; the precomputed total
// page count and the render pass must agree or the "Page X / N" footers would
// lie.
package layout

import "fmt"

// Item is the geometric view of one invoice line: the name row plus its
// description sub-lines.
type Item struct {
	DescriptionLines int
}

// Config holds the vertical geometry of a page, in the unit the renderer
// draws in (millimetres for A4).
type Config struct {
	// PageBudget is the y coordinate content may not cross (page height
	// minus the footer reservation).
	PageBudget float64
	// FirstPageTop is where content starts on page 1, below the title,
	// parties and dates block.
	FirstPageTop float64
	// NextPageTop is where content starts on subsequent pages.
	NextPageTop        float64
	TableHeaderHeight  float64
	SummaryHeight      float64
	PaymentBlockHeight float64 // payment details + legal notices, combined
	BottomPadding      float64 // reserved above the budget line on every page
	LineHeight         float64
	MinRowHeight       float64
	RowPadding         float64
}

// A4 is the geometry used by the PDF renderer (portrait A4, mm).
func A4() Config {
	return Config{
		PageBudget:         282,
		FirstPageTop:       95,
		NextPageTop:        20,
		TableHeaderHeight:  8,
		SummaryHeight:      18,
		PaymentBlockHeight: 48,
		BottomPadding:      8,
		LineHeight:         4.2,
		MinRowHeight:       9,
		RowPadding:         5,
	}
}

// ItemHeight is the rendered height of one item: the description sub-lines
// plus fixed padding for the name row, floored at the minimum row height.
func (c Config) ItemHeight(it Item) float64 {
	h := float64(it.DescriptionLines)*c.LineHeight + c.RowPadding
	if h < c.MinRowHeight {
		return c.MinRowHeight
	}
	return h
}

// Row places one item on a page.
type Row struct {
	Index  int // index into the input slice
	Y      float64
	Height float64
}

// Page is one item page of the plan.
type Page struct {
	Rows        []Row
	HeaderY     float64 // top of the table header
	TableTop    float64 // first row y (== HeaderY + header height)
	TableBottom float64 // bottom of the row group, for the table border
	// SummaryFits records, at pack time, whether the summary box fits in
	// this page's remaining space. Only the last page's flag is consulted.
	SummaryFits bool
}

// Plan is the complete pagination decision for one invoice.
type Plan struct {
	Pages      []Page
	TotalPages int
	// SummaryOnLastPage: summary box drawn on the last item page, at
	// SummaryY. Otherwise it goes on its own fresh page.
	SummaryOnLastPage bool
	SummaryY          float64
	// PaymentOnSummaryPage: payment/legal block drawn directly under the
	// summary box on the same page, at PaymentY. Otherwise it gets a fresh
	// page of its own.
	PaymentOnSummaryPage bool
	PaymentY             float64
}

// Paginate packs items in order and decides summary/payment placement and the
// total page count.
//
// The fit test is inclusive: content landing exactly on the budget edge is
// accepted. An item taller than a whole page is still forced onto its own
// page, overflowing the budget rather than being split.
func Paginate(items []Item, cfg Config) Plan {
	limit := cfg.PageBudget - cfg.BottomPadding

	var pages []Page
	top := cfg.FirstPageTop
	cur := Page{HeaderY: top, TableTop: top + cfg.TableHeaderHeight}
	cursor := top + cfg.TableHeaderHeight

	for i, it := range items {
		// The table header is charged when the page is opened: cursor
		// already sits below it, so the first item's fit test includes it.
		h := cfg.ItemHeight(it)
		if cursor+h > limit && len(cur.Rows) > 0 {
			// close this page, retry on a fresh one
			cur.TableBottom = cursor
			cur.SummaryFits = cursor+cfg.SummaryHeight <= limit
			pages = append(pages, cur)
			top = cfg.NextPageTop
			cur = Page{HeaderY: top, TableTop: top + cfg.TableHeaderHeight}
			cursor = top + cfg.TableHeaderHeight
		}
		// Place even if it overflows a fresh page: items are never split.
		cur.Rows = append(cur.Rows, Row{Index: i, Y: cursor, Height: h})
		cursor += h
	}

	cur.TableBottom = cursor
	cur.SummaryFits = cursor+cfg.SummaryHeight <= limit
	pages = append(pages, cur)

	plan := Plan{Pages: pages, TotalPages: len(pages)}
	last := pages[len(pages)-1]
	if last.SummaryFits {
		plan.SummaryOnLastPage = true
		plan.SummaryY = last.TableBottom
		if last.TableBottom+cfg.SummaryHeight+cfg.PaymentBlockHeight <= limit {
			plan.PaymentOnSummaryPage = true
			plan.PaymentY = plan.SummaryY + cfg.SummaryHeight
		} else {
			plan.TotalPages++
			plan.PaymentY = cfg.NextPageTop
		}
	} else {
		// Summary overflows to a page of its own; the payment block rides
		// along under it.
		plan.TotalPages++
		plan.SummaryY = cfg.NextPageTop
		plan.PaymentOnSummaryPage = true
		plan.PaymentY = plan.SummaryY + cfg.SummaryHeight
	}
	return plan
}

// CheckPageCount verifies that drawn agrees with the plan. A mismatch means
// the renderer and the packer disagree, which would print wrong "Page X / N"
// footers; that is a programming error, not a recoverable condition.
func (p Plan) CheckPageCount(drawn int) {
	if drawn != p.TotalPages {
		panic(fmt.Sprintf("layout: rendered %d pages, plan computed %d", drawn, p.TotalPages))
	}
}
