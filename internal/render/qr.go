package render

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"invoicedesk/backend/internal/domain"
)

type qrCustomer struct {
	Name      string `json:"name"`
	VATNumber string `json:"VATNumber"`
	Phone     string `json:"phone"`
}

type qrPayload struct {
	ID       string     `json:"id"`
	Date     string     `json:"date"`
	SubTotal float64    `json:"subTotal"`
	TaxTotal float64    `json:"taxTotal"`
	Total    float64    `json:"total"`
	Customer qrCustomer `json:"customer"`
}

// InvoiceQRPayload is the compact JSON encoded into an invoice's QR code. The
// date is printed in loc.
func InvoiceQRPayload(inv domain.Invoice, loc *time.Location) ([]byte, error) {
	return json.Marshal(qrPayload{
		ID:       inv.ID,
		Date:     LongDate(inLocation(inv.Date, loc)),
		SubTotal: inv.SubTotal,
		TaxTotal: inv.TaxTotal,
		Total:    inv.Total,
		Customer: qrCustomer{
			Name:      inv.Customer.Name,
			VATNumber: inv.Customer.VATNumber,
			Phone:     inv.Customer.PhoneNumber,
		},
	})
}

// InvoiceQR renders the invoice payload as a PNG QR code.
func InvoiceQR(inv domain.Invoice, loc *time.Location, size int) ([]byte, error) {
	payload, err := InvoiceQRPayload(inv, loc)
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

func pngDataURL(png []byte) string {
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png))
}

// LongDate formats a date as printed on documents, e.g. "29th Nov, 2025".
// The zero time prints as a dash.
func LongDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := t.Day()
	suffix := "th"
	switch {
	case d%10 == 1 && d != 11:
		suffix = "st"
	case d%10 == 2 && d != 12:
		suffix = "nd"
	case d%10 == 3 && d != 13:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s %s", d, suffix, t.Format("Jan, 2006"))
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() || loc == nil {
		return t
	}
	return t.In(loc)
}
