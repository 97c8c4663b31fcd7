package render

import (
	"bytes"
	"html/template"
)

type htmlView struct {
	Document
	QR template.URL
}

// documentHTMLTmpl renders printable documents. Every user-controlled field is
// escaped by html/template.
var documentHTMLTmpl = template.Must(template.New("document").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>{{.Title}} {{.Number}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; color: #222; }
    header { display: flex; justify-content: space-between; align-items: flex-start; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    th { background: #f4f4f4; }
    .totals td { text-align: right; }
    .muted { color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <header>
    <div>
      <h2>{{.Company.Name}}</h2>
      {{if .Company.NameArabic}}<p>{{.Company.NameArabic}}</p>{{end}}
      <p class="muted">{{.Company.Address}}</p>
      <p class="muted">{{if .Company.VATNumber}}VAT: {{.Company.VATNumber}}{{end}} {{if .Company.CRNumber}}CR: {{.Company.CRNumber}}{{end}}</p>
    </div>
    {{if .QR}}<img src="{{.QR}}" alt="QR code" width="128" height="128" />{{end}}
  </header>

  <h3>{{.Title}} {{.Number}}</h3>
  <p>Date: {{.Date}}{{if .DueDate}} | Due: {{.DueDate}}{{end}}</p>
  {{with .Customer}}<p>Customer: {{.Name}}{{if .VATNumber}} (VAT {{.VATNumber}}){{end}}</p>
  {{if .Address}}<p class="muted">{{.Address}}</p>{{end}}{{end}}

  <table>
    <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
  </table>

  {{if .Totals}}<table class="totals">
    <tbody>{{range .Totals}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</tbody>
  </table>{{end}}
  {{if .AmountInWords}}<p><strong>{{.AmountInWords}}</strong></p>{{end}}

  {{range .Notes}}<p><strong>{{.Label}}:</strong> {{.Value}}</p>{{end}}
  {{with .BankDetails}}<p class="muted">Bank: {{.BankName}} | IBAN: {{.IBAN}} | Account: {{.AccountNumber}}</p>{{end}}
</body>
</html>
`))

// HTML renders doc as a standalone printable page.
func HTML(doc Document) string {
	view := htmlView{Document: doc}
	if len(doc.QRCode) > 0 {
		view.QR = template.URL(pngDataURL(doc.QRCode))
	}
	var buf bytes.Buffer
	if err := documentHTMLTmpl.Execute(&buf, view); err != nil {
		return "<!doctype html><html><body><p>Document rendering error.</p></body></html>"
	}
	return buf.String()
}
