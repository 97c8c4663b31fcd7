package domain

import "time"

const (
	KindInvoice           = "invoices"
	KindQuotation         = "quotations"
	KindPurchase          = "purchases"
	KindDeliveryNote      = "delivery-notes"
	KindMaintenanceReport = "maintenance-reports"
)

const (
	PaymentCreditCard   = "CREDIT_CARD"
	PaymentBankTransfer = "BANK_TRANSFER"
	PaymentCash         = "CASH"
)

type BankDetails struct {
	BankName      string `json:"bankName" yaml:"bank_name" validate:"required"`
	IBAN          string `json:"IBAN" yaml:"iban" validate:"required"`
	AccountNumber string `json:"accountNumber" yaml:"account_number" validate:"required"`
}

type Company struct {
	Name        string       `json:"name" yaml:"name"`
	NameArabic  string       `json:"nameArabic,omitempty" yaml:"name_arabic"`
	Address     string       `json:"address,omitempty" yaml:"address"`
	Email       string       `json:"email,omitempty" yaml:"email"`
	PhoneNumber string       `json:"phoneNumber,omitempty" yaml:"phone_number"`
	VATNumber   string       `json:"VATNumber,omitempty" yaml:"vat_number"`
	CRNumber    string       `json:"CRNumber,omitempty" yaml:"cr_number"`
	Website     string       `json:"website,omitempty" yaml:"website"`
	BankDetails *BankDetails `json:"bankDetails,omitempty" yaml:"bank_details"`
}

// Seller is the subset of the company profile printed on invoices and quotations.
type Seller struct {
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	VATNumber   string `json:"VATNumber,omitempty"`
	CRNumber    string `json:"CRNumber,omitempty"`
}

type Customer struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	VATNumber   string `json:"VATNumber,omitempty"`
}

type Item struct {
	Title     string  `json:"title" validate:"required"`
	Quantity  int     `json:"quantity" validate:"min=1"`
	UnitPrice float64 `json:"unitPrice" validate:"min=0"`
	TaxAmount float64 `json:"taxAmount"`
	UnitTotal float64 `json:"unitTotal"`
}

type Invoice struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date" validate:"required"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Seller      *Seller      `json:"seller,omitempty"`
	Customer    Customer     `json:"customer"`
	PaymentType string       `json:"paymentType,omitempty" validate:"omitempty,oneof=CREDIT_CARD BANK_TRANSFER CASH"`
	Items       []Item       `json:"items" validate:"min=1,dive"`
	SubTotal    float64      `json:"subTotal"`
	TaxTotal    float64      `json:"taxTotal"`
	Total       float64      `json:"total"`
	Remarks     string       `json:"remarks,omitempty"`
	BankDetails *BankDetails `json:"bankDetails,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
}

type Quotation struct {
	ID        string     `json:"id"`
	Date      *time.Time `json:"date,omitempty"`
	Seller    *Seller    `json:"seller,omitempty"`
	Customer  Customer   `json:"customer"`
	Subject   string     `json:"subject,omitempty"`
	Items     []Item     `json:"items" validate:"min=1,dive"`
	SubTotal  float64    `json:"subTotal"`
	TaxTotal  float64    `json:"taxTotal"`
	Total     float64    `json:"total"`
	Details   string     `json:"details,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type Purchase struct {
	ID          string     `json:"id"`
	Date        time.Time  `json:"date" validate:"required"`
	Description string     `json:"description,omitempty"`
	SubTotal    float64    `json:"subTotal" validate:"min=0"`
	TaxTotal    *float64   `json:"taxTotal,omitempty" validate:"omitempty,min=0"`
	Total       float64    `json:"total"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type DeliveryItem struct {
	Title    string `json:"title" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type DeliveryNote struct {
	ID            string         `json:"id"`
	InvoiceID     string         `json:"invId,omitempty"`
	Date          time.Time      `json:"date" validate:"required"`
	DueDate       time.Time      `json:"dueDate" validate:"required"`
	Customer      Customer       `json:"customer"`
	PaymentType   string         `json:"paymentType" validate:"required,oneof=CREDIT_CARD BANK_TRANSFER CASH"`
	Items         []DeliveryItem `json:"items" validate:"min=1,dive"`
	DriverDetails string         `json:"driverDetails,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
}

type RepairItem struct {
	Description string   `json:"description"`
	LabourHours *float64 `json:"labourHours,omitempty" validate:"omitempty,min=0"`
	Price       float64  `json:"price" validate:"min=0"`
}

type MaintenanceReport struct {
	ID           string       `json:"id"`
	Date         time.Time    `json:"date" validate:"required"`
	Customer     Customer     `json:"customer"`
	Symptoms     string       `json:"symptoms,omitempty"`
	CauseOfIssue string       `json:"causeOfIssue,omitempty"`
	Repair       []RepairItem `json:"repair" validate:"min=1,dive"`
	TotalCost    float64      `json:"totalCost"`
	Remark       string       `json:"remark,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type StatsQuery struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

type StatsResult struct {
	InvoiceCount     int     `json:"invoiceCount"`
	PurchaseCount    int     `json:"purchaseCount"`
	QuotationCount   int     `json:"quotationCount"`
	TotalTaxReceived float64 `json:"totalTaxReceived"`
	TotalTaxPaid     float64 `json:"totalTaxPaid"`
	NetTax           float64 `json:"netTax"`
}

type CollectionDiagnostics struct {
	Scanned          int `json:"scanned"`
	Matched          int `json:"matched"`
	SkippedTimestamp int `json:"skippedTimestamp"`
	MalformedTax     int `json:"malformedTax"`
}

// StatsView is what the dashboard consumes: the aggregate plus its cache state.
type StatsView struct {
	Year        int                              `json:"year"`
	Quarter     int                              `json:"quarter"`
	Data        StatsResult                      `json:"data"`
	IsLoading   bool                             `json:"isLoading"`
	IsError     bool                             `json:"isError"`
	Error       string                           `json:"error,omitempty"`
	Stale       bool                             `json:"stale"`
	FetchedAt   time.Time                        `json:"fetchedAt"`
	Diagnostics map[string]CollectionDiagnostics `json:"diagnostics,omitempty"`
}

type MonthBreakdown struct {
	Month       string  `json:"month"`
	Invoices    int     `json:"invoices"`
	Quotations  int     `json:"quotations"`
	Purchases   int     `json:"purchases"`
	TaxReceived float64 `json:"taxReceived"`
	TaxPaid     float64 `json:"taxPaid"`
}

type QuarterlyReport struct {
	Year    int              `json:"year"`
	Quarter int              `json:"quarter"`
	Start   time.Time        `json:"start"`
	End     time.Time        `json:"end"`
	Totals  StatsResult      `json:"totals"`
	Months  []MonthBreakdown `json:"months"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	IssuedAt    string `json:"issuedAt"`
	ExpiresAt   string `json:"expiresAt"`
}
