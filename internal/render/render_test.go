package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoicedesk/backend/internal/domain"
)

func sampleInvoice() domain.Invoice {
	due := time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)
	return domain.Invoice{
		ID:          "INV-12345678",
		Date:        time.Date(2025, time.November, 28, 22, 30, 0, 0, time.UTC),
		DueDate:     &due,
		Customer:    domain.Customer{Name: "Gulf <Fabrication>", VATNumber: "300000000000003", PhoneNumber: "+966500000000"},
		PaymentType: domain.PaymentBankTransfer,
		Items: []domain.Item{
			{Title: "Welding", Quantity: 2, UnitPrice: 50, TaxAmount: 15, UnitTotal: 115},
		},
		SubTotal:    100,
		TaxTotal:    15,
		Total:       115.11,
		BankDetails: &domain.BankDetails{BankName: "Al Rajhi", IBAN: "SA0380000000608010167519", AccountNumber: "608010167519"},
	}
}

func TestAmountInWords(t *testing.T) {
	cases := map[float64]string{
		0:          "Zero Riyals Only",
		1:          "One Riyal Only",
		115.11:     "One Hundred Fifteen Riyals And Eleven Halalas Only",
		1000.01:    "One Thousand Riyals And One Halala Only",
		2530:       "Two Thousand Five Hundred Thirty Riyals Only",
		1000000:    "One Million Riyals Only",
		-40.5:      "Minus Forty Riyals And Fifty Halalas Only",
		1234567.89: "One Million Two Hundred Thirty Four Thousand Five Hundred Sixty Seven Riyals And Eighty Nine Halalas Only",
	}
	for amount, want := range cases {
		assert.Equal(t, want, AmountInWords(amount), "amount %v", amount)
	}
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "1st Jan, 2025", LongDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2nd Feb, 2025", LongDate(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "13th Mar, 2025", LongDate(time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "23rd Apr, 2025", LongDate(time.Date(2025, 4, 23, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "—", LongDate(time.Time{}))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "999.50", Money(999.5))
	assert.Equal(t, "1,234,567.89", Money(1234567.891))
	assert.Equal(t, "-1,000.00", Money(-1000))
}

func TestInvoiceQRPayloadUsesLocation(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*3600)
	payload, err := InvoiceQRPayload(sampleInvoice(), riyadh)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "INV-12345678", decoded["id"])
	assert.Equal(t, "29th Nov, 2025", decoded["date"])
	assert.Equal(t, 115.11, decoded["total"])
	customer := decoded["customer"].(map[string]any)
	assert.Equal(t, "300000000000003", customer["VATNumber"])
	assert.Equal(t, "+966500000000", customer["phone"])
}

func TestInvoiceQRIsPNG(t *testing.T) {
	png, err := InvoiceQR(sampleInvoice(), time.UTC, 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestFromDocumentLayouts(t *testing.T) {
	company := domain.Company{Name: "Desk Trading", VATNumber: "311111111100003"}
	hours := 1.5
	tax := 60.0

	docs := []any{
		sampleInvoice(),
		domain.Quotation{ID: "QUO-12345678", Customer: domain.Customer{Name: "A"}, Items: []domain.Item{{Title: "x", Quantity: 1}}},
		domain.Purchase{ID: "PUR-12345678", Date: time.Now(), Description: "Steel", SubTotal: 400, TaxTotal: &tax, Total: 460},
		domain.DeliveryNote{ID: "DEL-12345678", Date: time.Now(), DueDate: time.Now(), PaymentType: domain.PaymentCash, Items: []domain.DeliveryItem{{Title: "Pipe", Quantity: 3}}},
		domain.MaintenanceReport{ID: "MR-12345678", Date: time.Now(), Repair: []domain.RepairItem{{Description: "Seal", LabourHours: &hours, Price: 80}}, TotalCost: 80, Symptoms: "Leak"},
	}
	titles := []string{"Tax Invoice", "Quotation", "Purchase", "Delivery Note", "Maintenance Report"}

	for i, raw := range docs {
		doc, err := FromDocument(raw, company, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, titles[i], doc.Title)
		assert.Equal(t, company.Name, doc.Company.Name)
		for _, row := range doc.Rows {
			assert.Len(t, row, len(doc.Columns), "%s row width", doc.Title)
		}
	}

	_, err := FromDocument("not a document", company, time.UTC)
	assert.Error(t, err)
}

func TestHTMLEscapesAndEmbedsQR(t *testing.T) {
	doc, err := FromDocument(sampleInvoice(), domain.Company{Name: "Desk Trading"}, time.UTC)
	require.NoError(t, err)

	page := HTML(doc)
	assert.Contains(t, page, "Tax Invoice INV-12345678")
	assert.Contains(t, page, "Gulf &lt;Fabrication&gt;")
	assert.NotContains(t, page, "Gulf <Fabrication>")
	assert.Contains(t, page, `src="data:image/png;base64,`)
	assert.Contains(t, page, "One Hundred Fifteen Riyals And Eleven Halalas Only")
	assert.Contains(t, page, "Bank Transfer")
}

func TestPDFRendersDocument(t *testing.T) {
	doc, err := FromDocument(sampleInvoice(), domain.Company{Name: "Desk Trading", Address: "Dammam"}, time.UTC)
	require.NoError(t, err)

	out, err := PDF(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func sampleReport() domain.QuarterlyReport {
	return domain.QuarterlyReport{
		Year:    2024,
		Quarter: 2,
		Start:   time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		Totals:  domain.StatsResult{InvoiceCount: 2, PurchaseCount: 1, TotalTaxReceived: 100, TotalTaxPaid: 40.25, NetTax: 59.75},
		Months: []domain.MonthBreakdown{
			{Month: "2024-04", Invoices: 2, TaxReceived: 100},
			{Month: "2024-05", Purchases: 1, TaxPaid: 40.25},
			{Month: "2024-06"},
		},
	}
}

func TestQuarterlyCSV(t *testing.T) {
	out, err := QuarterlyCSV(sampleReport())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	assert.Contains(t, rows, []string{"summary", "net_tax", "59.75"})
	assert.Contains(t, rows, []string{"2024-05", "0", "0", "1", "0.00", "40.25"})
	assert.True(t, strings.HasPrefix(string(out), "section,key,value\n"))
}

func TestQuarterlyXLSX(t *testing.T) {
	out, err := QuarterlyXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report Q2 2024", title)

	month, err := f.GetCellValue("months", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2024-05", month)
}
