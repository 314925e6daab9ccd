// Package pdf renders an invoice to a paginated PDF document. All pagination
// decisions come from the layout package; this package only binds them to
// absolute-positioned draw calls on a gofpdf surface.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"github.com/maelj/facturio/internal/format"
	"github.com/maelj/facturio/internal/layout"
	"github.com/maelj/facturio/internal/models"
)

// Horizontal geometry (mm, portrait A4). Vertical geometry lives in
// layout.Config.
const (
	marginX      = 15
	contentW     = 180
	colNameW     = 90
	colQtyW      = 18
	colUnitW     = 22
	colPriceW    = 25
	colTotalW    = 25
	summaryBoxX  = 110
	summaryBoxW  = 85
	logoX        = 15
	logoY        = 12
	logoSize     = 28
	footerY      = 288
	nameOffsetY  = 3 // name baseline offset inside a row
	rowTextH     = 5
	descIndent   = 3
)

// Renderer draws invoices onto A4 pages.
type Renderer struct {
	cfg         layout.Config
	images      ImageSource
	defaultLogo string // bundled fallback logo path, may be empty
}

func NewRenderer(images ImageSource, defaultLogoPath string) *Renderer {
	return &Renderer{cfg: layout.A4(), images: images, defaultLogo: defaultLogoPath}
}

// Filename is the suggested download name for an invoice export.
func Filename(number string) string { return "facture-" + number + ".pdf" }

// Render lays out and draws the invoice, returning the PDF bytes. Logo
// problems are recovered internally; an error here means the document itself
// could not be produced.
func (r *Renderer) Render(inv *models.Invoice) ([]byte, error) {
	items := make([]layout.Item, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = layout.Item{DescriptionLines: len(it.DescriptionLines())}
	}
	plan := layout.Paginate(items, r.cfg)

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0) // pagination is ours, not gofpdf's
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for pageIdx, page := range plan.Pages {
		doc.AddPage()
		if pageIdx == 0 {
			r.drawPreamble(doc, tr, inv)
		}
		r.drawTableHeader(doc, tr, page.HeaderY)
		for _, row := range page.Rows {
			r.drawRow(doc, tr, &inv.Items[row.Index], row)
		}
		// border around the whole group, header included
		doc.SetDrawColor(60, 60, 60)
		doc.Rect(marginX, page.HeaderY, contentW, page.TableBottom-page.HeaderY, "D")
		r.drawFooter(doc, tr, doc.PageNo(), plan.TotalPages, inv.Number)
	}

	if !plan.SummaryOnLastPage {
		doc.AddPage()
		r.drawFooter(doc, tr, doc.PageNo(), plan.TotalPages, inv.Number)
	}
	r.drawSummary(doc, tr, plan.SummaryY, inv)

	if !plan.PaymentOnSummaryPage {
		doc.AddPage()
		r.drawFooter(doc, tr, doc.PageNo(), plan.TotalPages, inv.Number)
	}
	r.drawPayment(doc, tr, plan.PaymentY, inv)

	plan.CheckPageCount(doc.PageNo())

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

type translator func(string) string

func (r *Renderer) drawPreamble(doc *gofpdf.Fpdf, tr translator, inv *models.Invoice) {
	r.drawLogo(doc, tr, inv.Seller)

	// Title and dates, right side
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 20)
	doc.SetXY(110, 14)
	doc.CellFormat(85, 9, tr("FACTURE"), "", 0, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.SetXY(110, 24)
	doc.CellFormat(85, 5, tr("n° "+inv.Number), "", 0, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	doc.SetXY(110, 31)
	doc.CellFormat(85, 4.5, tr("Date de facturation : "+format.Date(inv.InvoiceDate)), "", 0, "R", false, 0, "")
	doc.SetXY(110, 35.5)
	doc.CellFormat(85, 4.5, tr("Date de livraison : "+format.Date(inv.DeliveryDate)), "", 0, "R", false, 0, "")
	doc.SetXY(110, 40)
	doc.CellFormat(85, 4.5, tr("Échéance : "+format.Date(inv.PaymentDue)+" ("+inv.PaymentTerms+")"), "", 0, "R", false, 0, "")

	r.drawParty(doc, tr, marginX, 52, "", inv.Seller)
	r.drawParty(doc, tr, 110, 52, "Facturé à", inv.Buyer)
}

// drawParty writes a party block at (x, y). Bank details are never shown
// here, they belong to the payment block.
func (r *Renderer) drawParty(doc *gofpdf.Fpdf, tr translator, x, y float64, caption string, p models.Party) {
	line := func(s string, bold bool, size float64) {
		if s == "" {
			return
		}
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, size)
		doc.SetXY(x, y)
		doc.CellFormat(85, 4.6, tr(s), "", 0, "L", false, 0, "")
		y += 4.6
	}
	if caption != "" {
		doc.SetTextColor(120, 120, 120)
		line(caption, false, 8)
		doc.SetTextColor(0, 0, 0)
	}
	line(p.Nom, true, 10)
	line(p.Ligne1, false, 9)
	line(p.Ligne2, false, 9)
	line(p.CodePostal+" "+p.Ville, false, 9)
	line(p.Pays, false, 9)
	if p.SIRET != "" {
		line("SIRET : "+format.SIRET(p.SIRET), false, 9)
	}
	if p.Telephone != "" {
		line("Tél : "+format.Phone(p.Telephone), false, 9)
	}
	line(p.Email, false, 9)
}

func (r *Renderer) drawTableHeader(doc *gofpdf.Fpdf, tr translator, y float64) {
	h := r.cfg.TableHeaderHeight
	doc.SetFillColor(235, 235, 235)
	doc.Rect(marginX, y, contentW, h, "F")
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 9)
	x := float64(marginX)
	cell := func(w float64, label, align string) {
		doc.SetXY(x, y+(h-4)/2)
		doc.CellFormat(w, 4, tr(label), "", 0, align, false, 0, "")
		x += w
	}
	cell(colNameW, "  Désignation", "L")
	cell(colQtyW, "Qté", "C")
	cell(colUnitW, "Unité", "C")
	cell(colPriceW, "PU HT", "R")
	cell(colTotalW, "Total HT  ", "R")
}

func (r *Renderer) drawRow(doc *gofpdf.Fpdf, tr translator, it *models.LineItem, row layout.Row) {
	y := row.Y + nameOffsetY
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 9)
	doc.SetXY(marginX+2, y)
	doc.CellFormat(colNameW-2, rowTextH, tr(it.Name), "", 0, "L", false, 0, "")

	qty := strconv.FormatFloat(it.Quantity, 'f', -1, 64)
	x := float64(marginX + colNameW)
	doc.SetXY(x, y)
	doc.CellFormat(colQtyW, rowTextH, tr(qty), "", 0, "C", false, 0, "")
	x += colQtyW
	doc.SetXY(x, y)
	doc.CellFormat(colUnitW, rowTextH, tr(format.PluralizeUnit(it.Unit, it.Quantity)), "", 0, "C", false, 0, "")
	x += colUnitW
	doc.SetXY(x, y)
	doc.CellFormat(colPriceW, rowTextH, tr(format.EUR(it.UnitPrice)), "", 0, "R", false, 0, "")
	x += colPriceW
	doc.SetXY(x, y)
	doc.CellFormat(colTotalW-2, rowTextH, tr(format.EUR(it.Total)), "", 0, "R", false, 0, "")

	// description sub-lines, indented and greyed, never separated from
	// their name
	doc.SetTextColor(110, 110, 110)
	doc.SetFont("Helvetica", "", 8)
	descY := y + rowTextH
	for _, l := range it.DescriptionLines() {
		doc.SetXY(marginX+2+descIndent, descY)
		doc.CellFormat(colNameW-2-descIndent, r.cfg.LineHeight, tr(l), "", 0, "L", false, 0, "")
		descY += r.cfg.LineHeight
	}
}

func (r *Renderer) drawSummary(doc *gofpdf.Fpdf, tr translator, y float64, inv *models.Invoice) {
	h := r.cfg.SummaryHeight
	doc.SetFillColor(245, 245, 245)
	doc.SetDrawColor(60, 60, 60)
	doc.Rect(summaryBoxX, y, summaryBoxW, h, "FD")
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 11)
	doc.SetXY(summaryBoxX+4, y+(h-6)/2)
	doc.CellFormat(40, 6, tr("Total HT :"), "", 0, "L", false, 0, "")
	doc.SetXY(summaryBoxX+summaryBoxW-45, y+(h-6)/2)
	doc.CellFormat(41, 6, tr(format.EUR(inv.ItemsTotal())), "", 0, "R", false, 0, "")
}

func (r *Renderer) drawPayment(doc *gofpdf.Fpdf, tr translator, y float64, inv *models.Invoice) {
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 10)
	doc.SetXY(marginX, y+2)
	doc.CellFormat(contentW, 5, tr("Règlement"), "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	ly := y + 8
	line := func(s string) {
		if s == "" {
			return
		}
		doc.SetXY(marginX, ly)
		doc.CellFormat(contentW, 4.6, tr(s), "", 0, "L", false, 0, "")
		ly += 4.6
	}
	line("Paiement par virement bancaire, échéance le " + format.Date(inv.PaymentDue) + ".")
	s := inv.Seller
	if s.Titulaire != "" {
		line("Titulaire du compte : " + s.Titulaire)
	}
	if s.IBAN != "" {
		line("IBAN : " + format.IBAN(s.IBAN))
	}
	if s.BIC != "" {
		line("BIC : " + s.BIC)
	}
	if s.Banque != "" {
		line("Banque : " + s.Banque)
	}

	// mentions légales
	ly += 3
	doc.SetTextColor(110, 110, 110)
	doc.SetFont("Helvetica", "", 7.5)
	for _, notice := range []string{
		"TVA non applicable, art. 293 B du CGI.",
		"Pas d'escompte pour règlement anticipé.",
		"Tout retard de paiement entraîne une pénalité égale à 3 fois le taux d'intérêt légal,",
		"ainsi qu'une indemnité forfaitaire pour frais de recouvrement de 40 €.",
	} {
		doc.SetXY(marginX, ly)
		doc.CellFormat(contentW, 3.8, tr(notice), "", 0, "L", false, 0, "")
		ly += 3.8
	}
}

func (r *Renderer) drawFooter(doc *gofpdf.Fpdf, tr translator, page, total int, number string) {
	doc.SetTextColor(130, 130, 130)
	doc.SetFont("Helvetica", "", 8)
	doc.SetXY(marginX, footerY)
	doc.CellFormat(60, 4, tr("Facture "+number), "", 0, "L", false, 0, "")
	doc.SetXY(marginX, footerY)
	doc.CellFormat(contentW, 4, tr(fmt.Sprintf("Page %d / %d", page, total)), "", 0, "C", false, 0, "")
}

// drawLogo runs the fallback chain: user logo, bundled default, placeholder
// glyph. Load or decode failures are recovered here, never reported.
func (r *Renderer) drawLogo(doc *gofpdf.Fpdf, tr translator, seller models.Party) {
	for i, path := range []string{seller.LogoPath, r.defaultLogo} {
		if path == "" {
			continue
		}
		raw, err := r.images.Load(path)
		if err != nil {
			continue
		}
		prepared, err := prepareLogo(raw)
		if err != nil {
			continue
		}
		name := fmt.Sprintf("logo-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(prepared))
		if doc.Err() {
			doc.ClearError()
			continue
		}
		// height 0: derived from the aspect ratio preserved by prepareLogo
		doc.ImageOptions(name, logoX, logoY, logoSize, 0, false, opts, 0, "")
		return
	}

	// placeholder: initial inside a filled circle
	initial := "?"
	for _, c := range seller.Nom {
		initial = string(c)
		break
	}
	doc.SetFillColor(70, 90, 120)
	doc.Circle(logoX+logoSize/2, logoY+logoSize/2, logoSize/2, "F")
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 18)
	doc.SetXY(logoX, logoY+logoSize/2-4)
	doc.CellFormat(logoSize, 8, tr(initial), "", 0, "C", false, 0, "")
}
