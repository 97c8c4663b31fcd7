package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"invoicedesk/backend/internal/domain"
)

var reportMonthHeader = []string{"month", "invoices", "quotations", "purchases", "tax_received", "tax_paid"}

// QuarterlyCSV writes the report as summary rows followed by one row per month.
func QuarterlyCSV(report domain.QuarterlyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "year", strconv.Itoa(report.Year)},
		{"summary", "quarter", strconv.Itoa(report.Quarter)},
		{"summary", "invoices", strconv.Itoa(report.Totals.InvoiceCount)},
		{"summary", "quotations", strconv.Itoa(report.Totals.QuotationCount)},
		{"summary", "purchases", strconv.Itoa(report.Totals.PurchaseCount)},
		{"summary", "tax_received", amount(report.Totals.TotalTaxReceived)},
		{"summary", "tax_paid", amount(report.Totals.TotalTaxPaid)},
		{"summary", "net_tax", amount(report.Totals.NetTax)},
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	if err := w.Write(reportMonthHeader); err != nil {
		return nil, err
	}
	for _, m := range report.Months {
		if err := w.Write([]string{
			m.Month,
			strconv.Itoa(m.Invoices),
			strconv.Itoa(m.Quotations),
			strconv.Itoa(m.Purchases),
			amount(m.TaxReceived),
			amount(m.TaxPaid),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// QuarterlyXLSX writes the report as a workbook with a summary sheet and a
// months sheet.
func QuarterlyXLSX(report domain.QuarterlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	monthsSheet := "months"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(monthsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Quarterly Report Q%d %d", report.Quarter, report.Year))
	summary := []struct {
		label string
		value any
	}{
		{"Period start", report.Start.Format("2006-01-02")},
		{"Period end", report.End.Format("2006-01-02")},
		{"Invoices", report.Totals.InvoiceCount},
		{"Quotations", report.Totals.QuotationCount},
		{"Purchases", report.Totals.PurchaseCount},
		{"Tax received", report.Totals.TotalTaxReceived},
		{"Tax paid", report.Totals.TotalTaxPaid},
		{"Net tax", report.Totals.NetTax},
	}
	for i, row := range summary {
		r := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", r), row.label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", r), row.value)
	}

	for i, h := range reportMonthHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(monthsSheet, cell, h)
	}
	for i, m := range report.Months {
		row := i + 2
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("A%d", row), m.Month)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("B%d", row), m.Invoices)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("C%d", row), m.Quotations)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("D%d", row), m.Purchases)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("E%d", row), m.TaxReceived)
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("F%d", row), m.TaxPaid)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
