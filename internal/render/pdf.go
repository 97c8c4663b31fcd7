package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth = 190.0
	pdfQRSize    = 32.0
)

// PDF renders doc on A4 pages.
func PDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("%s %s", doc.Title, doc.Number), true)
	pdf.AddPage()

	if len(doc.QRCode) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(doc.QRCode))
		pdf.ImageOptions("qr", 10+pdfPageWidth-pdfQRSize, 10, pdfQRSize, pdfQRSize, false, opts, 0, "")
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(doc.Company.Name))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{doc.Company.Address, vatLine(doc)} {
		if line == "" {
			continue
		}
		pdf.Cell(0, 5, tr(line))
		pdf.Ln(5)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, tr(fmt.Sprintf("%s %s", doc.Title, doc.Number)))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	dates := "Date: " + doc.Date
	if doc.DueDate != "" {
		dates += "   Due: " + doc.DueDate
	}
	pdf.Cell(0, 6, tr(dates))
	pdf.Ln(6)
	if doc.Customer != nil {
		pdf.Cell(0, 6, tr("Customer: "+doc.Customer.Name))
		pdf.Ln(6)
	}

	if len(doc.QRCode) > 0 && pdf.GetY() < 10+pdfQRSize {
		pdf.SetY(10 + pdfQRSize + 2)
	}
	pdf.Ln(4)

	widths := columnWidths(len(doc.Columns))
	pdf.SetFont("Arial", "B", 10)
	for i, col := range doc.Columns {
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range doc.Rows {
		for i, cell := range row {
			align := "L"
			if i > 1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	for _, total := range doc.Totals {
		pdf.CellFormat(pdfPageWidth-45, 6, tr(total.Label), "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, tr(total.Value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if doc.AmountInWords != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, tr(doc.AmountInWords), "", "L", false)
		pdf.SetFont("Arial", "", 10)
	}
	for _, note := range doc.Notes {
		pdf.MultiCell(0, 6, tr(note.Label+": "+note.Value), "", "L", false)
	}
	if bank := doc.BankDetails; bank != nil {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("Bank: %s  IBAN: %s  Account: %s", bank.BankName, bank.IBAN, bank.AccountNumber)), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func vatLine(doc Document) string {
	switch {
	case doc.Company.VATNumber != "" && doc.Company.CRNumber != "":
		return fmt.Sprintf("VAT: %s   CR: %s", doc.Company.VATNumber, doc.Company.CRNumber)
	case doc.Company.VATNumber != "":
		return "VAT: " + doc.Company.VATNumber
	case doc.Company.CRNumber != "":
		return "CR: " + doc.Company.CRNumber
	}
	return ""
}

// columnWidths gives the second column (the description) whatever the
// fixed-width columns leave over.
func columnWidths(n int) []float64 {
	widths := make([]float64, n)
	if n == 0 {
		return widths
	}
	if n == 1 {
		widths[0] = pdfPageWidth
		return widths
	}
	rest := pdfPageWidth
	for i := range widths {
		if i == 1 {
			continue
		}
		widths[i] = 28
		if i == 0 {
			widths[i] = 12
		}
		rest -= widths[i]
	}
	widths[1] = rest
	return widths
}
