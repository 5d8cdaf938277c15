// Package pdf renders assembled invoice documents with gofpdf.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/atrule/invoicing/internal/services"
)

// Renderer draws invoice and receipt documents onto A4 pages.
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

const (
	marginLeft  = 15.0
	marginTop   = 15.0
	marginRight = 15.0
	pageWidth   = 210.0
	contentW    = pageWidth - marginLeft - marginRight
)

func (r *Renderer) Render(data *services.DocumentData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Receipt {
		drawWatermark(pdf)
	}

	drawHeader(pdf, tr, data)
	drawParties(pdf, tr, data)
	drawItems(pdf, tr, data)
	drawTotals(pdf, tr, data)
	if len(data.PaymentRows) > 0 {
		drawPaymentRows(pdf, tr, data)
	}
	if data.PaymentCommunication != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(contentW, 4.5, tr(data.PaymentCommunication), "", "L", false)
	}
	if len(data.GuidelineImage) > 0 {
		drawGuidelineImage(pdf, data.GuidelineImage)
	}
	if data.Confirmation != nil {
		drawConfirmation(pdf, tr, data.Confirmation)
	}
	if data.FooterText != "" {
		pdf.SetY(-25)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(contentW, 4, tr(data.FooterText), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawWatermark(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 80)
	pdf.SetTextColor(225, 235, 225)
	pdf.TransformBegin()
	pdf.TransformRotate(45, pageWidth/2, 148)
	pdf.Text(45, 160, "PAID")
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, data *services.DocumentData) {
	if len(data.OwnerLogo) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("owner-logo", opts, bytes.NewReader(data.OwnerLogo))
		pdf.ImageOptions("owner-logo", marginLeft, marginTop, 30, 0, false, opts, 0, "")
	}

	title := "INVOICE"
	if data.Receipt {
		title = "RECEIPT"
	}
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(contentW, 10, title, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(contentW, 5, tr(data.Number), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Date: "+data.Date, "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Due: "+data.DueDate, "", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func drawParties(pdf *gofpdf.Fpdf, tr func(string) string, data *services.DocumentData) {
	half := contentW / 2
	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(half, 5, "From", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(half-5, 4.5, tr(partyBlock(data.OwnerName, data.OwnerAddress, data.OwnerEmail, data.OwnerPhone)), "", "L", false)
	bottom := pdf.GetY()

	pdf.SetXY(marginLeft+half, y)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(half, 5, "Bill To", "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetX(marginLeft + half)
	pdf.MultiCell(half, 4.5, tr(partyBlock(data.ClientName, data.ClientAddress, "", "")), "", "L", false)
	if pdf.GetY() > bottom {
		bottom = pdf.GetY()
	}
	pdf.SetY(bottom + 4)
}

func partyBlock(name, address, email, phone string) string {
	block := name
	for _, line := range []string{address, email, phone} {
		if line != "" {
			block += "\n" + line
		}
	}
	return block
}

func drawItems(pdf *gofpdf.Fpdf, tr func(string) string, data *services.DocumentData) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	widths := []float64{98, 20, 26, 36}
	headers := []string{"Description", "Hours", "Rate", "Amount"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, line := range data.Lines {
		y := pdf.GetY()
		pdf.MultiCell(widths[0], 4.5, tr(line.Description+"\n"+line.Purpose), "1", "L", false)
		rowBottom := pdf.GetY()
		rowH := rowBottom - y

		pdf.SetXY(marginLeft+widths[0], y)
		pdf.CellFormat(widths[1], rowH, tr(line.HoursText), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], rowH, tr(line.RateText), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], rowH, tr(line.Subtotal), "1", 0, "R", false, 0, "")
		pdf.SetY(rowBottom)

		if line.Calculation != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(contentW, 4, tr(line.Calculation), "LRB", "L", false)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Arial", "", 9)
		}
	}
}

func drawTotals(pdf *gofpdf.Fpdf, tr func(string) string, data *services.DocumentData) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	labelW := contentW - 40
	pdf.CellFormat(labelW, 8, tr(data.TotalLabel), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, tr(data.TotalText), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func drawPaymentRows(pdf *gofpdf.Fpdf, tr func(string) string, data *services.DocumentData) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(contentW, 6, "Payment Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, row := range data.PaymentRows {
		pdf.CellFormat(40, 5, row.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-40, 5, tr(row.Value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func drawGuidelineImage(pdf *gofpdf.Fpdf, img []byte) {
	pdf.Ln(2)
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("payment-guideline", opts, bytes.NewReader(img))
	pdf.ImageOptions("payment-guideline", marginLeft, pdf.GetY(), 80, 0, true, opts, 0, "")
}

func drawConfirmation(pdf *gofpdf.Fpdf, tr func(string) string, c *services.PaymentConfirmation) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(contentW, 6, "Payment Confirmation", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	rows := [][2]string{
		{"Payment Date", c.PaymentDate},
		{"Payment Method", c.Method},
		{"Amount Paid", c.AmountText},
		{"Invoice Number", c.InvoiceNumber},
	}
	for _, row := range rows {
		pdf.CellFormat(45, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-45, 6, tr(row[1]), "1", 1, "L", false, 0, "")
	}
}
