package render

import (
	"fmt"
	"strconv"
	"time"

	"invoicedesk/backend/internal/domain"
)

// Document is the print layout shared by every document kind.
type Document struct {
	Kind          string
	Title         string
	Number        string
	Date          string
	DueDate       string
	Company       domain.Company
	Customer      *domain.Customer
	Columns       []string
	Rows          [][]string
	Totals        []Field
	Notes         []Field
	AmountInWords string
	BankDetails   *domain.BankDetails
	QRCode        []byte
}

type Field struct {
	Label string
	Value string
}

const qrSize = 256

// FromDocument lays out any document returned by the documents service.
// Dates are printed in loc.
func FromDocument(doc any, company domain.Company, loc *time.Location) (Document, error) {
	switch d := doc.(type) {
	case domain.Invoice:
		return fromInvoice(d, company, loc)
	case domain.Quotation:
		return fromQuotation(d, company, loc), nil
	case domain.Purchase:
		return fromPurchase(d, company, loc), nil
	case domain.DeliveryNote:
		return fromDeliveryNote(d, company, loc), nil
	case domain.MaintenanceReport:
		return fromMaintenanceReport(d, company, loc), nil
	}
	return Document{}, fmt.Errorf("no print layout for %T", doc)
}

var itemColumns = []string{"#", "Description", "Qty", "Unit Price", "Tax", "Total"}

func itemRows(items []domain.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.Title,
			strconv.Itoa(it.Quantity),
			Money(it.UnitPrice),
			Money(it.TaxAmount),
			Money(it.UnitTotal),
		})
	}
	return rows
}

func fromInvoice(inv domain.Invoice, company domain.Company, loc *time.Location) (Document, error) {
	qr, err := InvoiceQR(inv, loc, qrSize)
	if err != nil {
		return Document{}, err
	}
	customer := inv.Customer
	doc := Document{
		Kind:     domain.KindInvoice,
		Title:    "Tax Invoice",
		Number:   inv.ID,
		Date:     LongDate(inLocation(inv.Date, loc)),
		Company:  company,
		Customer: &customer,
		Columns:  itemColumns,
		Rows:     itemRows(inv.Items),
		Totals: []Field{
			{"Subtotal", Money(inv.SubTotal)},
			{"VAT", Money(inv.TaxTotal)},
			{"Total", Money(inv.Total)},
		},
		AmountInWords: AmountInWords(inv.Total),
		BankDetails:   inv.BankDetails,
		QRCode:        qr,
	}
	if inv.DueDate != nil {
		doc.DueDate = LongDate(inLocation(*inv.DueDate, loc))
	}
	if inv.PaymentType != "" {
		doc.Notes = append(doc.Notes, Field{"Payment", paymentLabel(inv.PaymentType)})
	}
	if inv.Remarks != "" {
		doc.Notes = append(doc.Notes, Field{"Remarks", inv.Remarks})
	}
	return doc, nil
}

func fromQuotation(quo domain.Quotation, company domain.Company, loc *time.Location) Document {
	customer := quo.Customer
	doc := Document{
		Kind:     domain.KindQuotation,
		Title:    "Quotation",
		Number:   quo.ID,
		Company:  company,
		Customer: &customer,
		Columns:  itemColumns,
		Rows:     itemRows(quo.Items),
		Totals: []Field{
			{"Subtotal", Money(quo.SubTotal)},
			{"VAT", Money(quo.TaxTotal)},
			{"Total", Money(quo.Total)},
		},
		AmountInWords: AmountInWords(quo.Total),
	}
	if quo.Date != nil {
		doc.Date = LongDate(inLocation(*quo.Date, loc))
	}
	if quo.Subject != "" {
		doc.Notes = append(doc.Notes, Field{"Subject", quo.Subject})
	}
	if quo.Details != "" {
		doc.Notes = append(doc.Notes, Field{"Details", quo.Details})
	}
	return doc
}

func fromPurchase(p domain.Purchase, company domain.Company, loc *time.Location) Document {
	tax := 0.0
	if p.TaxTotal != nil {
		tax = *p.TaxTotal
	}
	return Document{
		Kind:    domain.KindPurchase,
		Title:   "Purchase",
		Number:  p.ID,
		Date:    LongDate(inLocation(p.Date, loc)),
		Company: company,
		Columns: []string{"#", "Description", "Subtotal", "VAT", "Total"},
		Rows:    [][]string{{"1", p.Description, Money(p.SubTotal), Money(tax), Money(p.Total)}},
		Totals: []Field{
			{"Subtotal", Money(p.SubTotal)},
			{"VAT", Money(tax)},
			{"Total", Money(p.Total)},
		},
	}
}

func fromDeliveryNote(note domain.DeliveryNote, company domain.Company, loc *time.Location) Document {
	customer := note.Customer
	rows := make([][]string, 0, len(note.Items))
	for i, it := range note.Items {
		rows = append(rows, []string{strconv.Itoa(i + 1), it.Title, strconv.Itoa(it.Quantity)})
	}
	doc := Document{
		Kind:     domain.KindDeliveryNote,
		Title:    "Delivery Note",
		Number:   note.ID,
		Date:     LongDate(inLocation(note.Date, loc)),
		DueDate:  LongDate(inLocation(note.DueDate, loc)),
		Company:  company,
		Customer: &customer,
		Columns:  []string{"#", "Description", "Qty"},
		Rows:     rows,
		Notes:    []Field{{"Payment", paymentLabel(note.PaymentType)}},
	}
	if note.InvoiceID != "" {
		doc.Notes = append(doc.Notes, Field{"Invoice", note.InvoiceID})
	}
	if note.DriverDetails != "" {
		doc.Notes = append(doc.Notes, Field{"Driver", note.DriverDetails})
	}
	return doc
}

func fromMaintenanceReport(report domain.MaintenanceReport, company domain.Company, loc *time.Location) Document {
	customer := report.Customer
	rows := make([][]string, 0, len(report.Repair))
	for i, r := range report.Repair {
		hours := ""
		if r.LabourHours != nil {
			hours = strconv.FormatFloat(*r.LabourHours, 'f', -1, 64)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Description, hours, Money(r.Price)})
	}
	doc := Document{
		Kind:          domain.KindMaintenanceReport,
		Title:         "Maintenance Report",
		Number:        report.ID,
		Date:          LongDate(inLocation(report.Date, loc)),
		Company:       company,
		Customer:      &customer,
		Columns:       []string{"#", "Repair", "Labour Hours", "Price"},
		Rows:          rows,
		Totals:        []Field{{"Total Cost", Money(report.TotalCost)}},
		AmountInWords: AmountInWords(report.TotalCost),
	}
	for _, note := range []Field{
		{"Symptoms", report.Symptoms},
		{"Cause of Issue", report.CauseOfIssue},
		{"Remark", report.Remark},
	} {
		if note.Value != "" {
			doc.Notes = append(doc.Notes, note)
		}
	}
	return doc
}

// Money formats an amount with two decimals and thousands separators.
func Money(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	for i := len(intPart) - 3; i > 0; i -= 3 {
		intPart = intPart[:i] + "," + intPart[i:]
	}
	return sign + intPart + frac
}

func paymentLabel(paymentType string) string {
	switch paymentType {
	case domain.PaymentCreditCard:
		return "Credit Card"
	case domain.PaymentBankTransfer:
		return "Bank Transfer"
	case domain.PaymentCash:
		return "Cash"
	}
	return paymentType
}
