// Package documents creates, reads, lists and deletes the business documents:
// invoices, quotations, purchases, delivery notes and maintenance reports.
// Totals are always computed here; whatever totals a client sends are
// overwritten.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"invoicedesk/backend/internal/domain"
	"invoicedesk/backend/internal/metrics"
	"invoicedesk/backend/internal/store"
	"invoicedesk/backend/internal/xid"
)

var ErrUnknownKind = errors.New("unknown document kind")

const idAttempts = 5

var prefixes = map[string]string{
	domain.KindInvoice:           "INV",
	domain.KindQuotation:         "QUO",
	domain.KindPurchase:          "PUR",
	domain.KindDeliveryNote:      "DEL",
	domain.KindMaintenanceReport: "MR",
}

// Kinds lists every document kind in display order.
func Kinds() []string {
	return []string{
		domain.KindInvoice,
		domain.KindQuotation,
		domain.KindPurchase,
		domain.KindDeliveryNote,
		domain.KindMaintenanceReport,
	}
}

func ValidKind(kind string) bool {
	_, ok := prefixes[kind]
	return ok
}

type Service struct {
	docs       store.DocumentStore
	company    domain.Company
	taxPercent decimal.Decimal
	location   *time.Location
	validate   *validator.Validate
	logger     *zap.Logger
	newID      func(prefix string) (string, error)
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(docs store.DocumentStore, company domain.Company, taxPercent float64, opts ...Option) *Service {
	s := &Service{
		docs:       docs,
		company:    company,
		taxPercent: decimal.NewFromFloat(taxPercent),
		location:   time.UTC,
		validate:   newValidator(),
		logger:     zap.NewNop(),
		newID:      xid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Company() domain.Company {
	return s.company
}

func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) CreateInvoice(ctx context.Context, inv domain.Invoice) (domain.CreatedResponse, error) {
	trimCustomer(&inv.Customer)
	if err := s.check(inv); err != nil {
		return domain.CreatedResponse{}, err
	}
	inv.SubTotal, inv.TaxTotal, inv.Total = priceItems(inv.Items, s.taxPercent)
	inv.Seller = s.seller()
	if inv.BankDetails == nil && inv.PaymentType == domain.PaymentBankTransfer {
		inv.BankDetails = s.company.BankDetails
	}
	inv.CreatedAt = nil
	return s.create(ctx, domain.KindInvoice, func(id string) any {
		inv.ID = id
		return inv
	})
}

func (s *Service) CreateQuotation(ctx context.Context, quo domain.Quotation) (domain.CreatedResponse, error) {
	trimCustomer(&quo.Customer)
	if err := s.check(quo); err != nil {
		return domain.CreatedResponse{}, err
	}
	quo.SubTotal, quo.TaxTotal, quo.Total = priceItems(quo.Items, s.taxPercent)
	quo.Seller = s.seller()
	quo.CreatedAt = nil
	return s.create(ctx, domain.KindQuotation, func(id string) any {
		quo.ID = id
		return quo
	})
}

func (s *Service) CreatePurchase(ctx context.Context, p domain.Purchase) (domain.CreatedResponse, error) {
	if err := s.check(p); err != nil {
		return domain.CreatedResponse{}, err
	}
	pricePurchase(&p, s.taxPercent)
	p.CreatedAt = nil
	return s.create(ctx, domain.KindPurchase, func(id string) any {
		p.ID = id
		return p
	})
}

func (s *Service) CreateDeliveryNote(ctx context.Context, note domain.DeliveryNote) (domain.CreatedResponse, error) {
	trimCustomer(&note.Customer)
	if err := s.check(note); err != nil {
		return domain.CreatedResponse{}, err
	}
	note.CreatedAt = nil
	return s.create(ctx, domain.KindDeliveryNote, func(id string) any {
		note.ID = id
		return note
	})
}

func (s *Service) CreateMaintenanceReport(ctx context.Context, report domain.MaintenanceReport) (domain.CreatedResponse, error) {
	trimCustomer(&report.Customer)
	if err := s.check(report); err != nil {
		return domain.CreatedResponse{}, err
	}
	report.TotalCost = repairCost(report.Repair)
	report.CreatedAt = nil
	return s.create(ctx, domain.KindMaintenanceReport, func(id string) any {
		report.ID = id
		return report
	})
}

func (s *Service) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	var inv domain.Invoice
	if err := s.get(ctx, domain.KindInvoice, id, &inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (s *Service) GetQuotation(ctx context.Context, id string) (domain.Quotation, error) {
	var quo domain.Quotation
	if err := s.get(ctx, domain.KindQuotation, id, &quo); err != nil {
		return domain.Quotation{}, err
	}
	return quo, nil
}

func (s *Service) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	var p domain.Purchase
	if err := s.get(ctx, domain.KindPurchase, id, &p); err != nil {
		return domain.Purchase{}, err
	}
	return p, nil
}

func (s *Service) GetDeliveryNote(ctx context.Context, id string) (domain.DeliveryNote, error) {
	var note domain.DeliveryNote
	if err := s.get(ctx, domain.KindDeliveryNote, id, &note); err != nil {
		return domain.DeliveryNote{}, err
	}
	return note, nil
}

func (s *Service) GetMaintenanceReport(ctx context.Context, id string) (domain.MaintenanceReport, error) {
	var report domain.MaintenanceReport
	if err := s.get(ctx, domain.KindMaintenanceReport, id, &report); err != nil {
		return domain.MaintenanceReport{}, err
	}
	return report, nil
}

func (s *Service) ListInvoices(ctx context.Context, filter Filter) ([]domain.Invoice, error) {
	return list[domain.Invoice](ctx, s, domain.KindInvoice, filter)
}

func (s *Service) ListQuotations(ctx context.Context, filter Filter) ([]domain.Quotation, error) {
	return list[domain.Quotation](ctx, s, domain.KindQuotation, filter)
}

func (s *Service) ListPurchases(ctx context.Context, filter Filter) ([]domain.Purchase, error) {
	return list[domain.Purchase](ctx, s, domain.KindPurchase, filter)
}

func (s *Service) ListDeliveryNotes(ctx context.Context, filter Filter) ([]domain.DeliveryNote, error) {
	return list[domain.DeliveryNote](ctx, s, domain.KindDeliveryNote, filter)
}

func (s *Service) ListMaintenanceReports(ctx context.Context, filter Filter) ([]domain.MaintenanceReport, error) {
	return list[domain.MaintenanceReport](ctx, s, domain.KindMaintenanceReport, filter)
}

// Get returns any kind of document by id, typed as its domain struct.
func (s *Service) Get(ctx context.Context, kind string, id string) (any, error) {
	switch kind {
	case domain.KindInvoice:
		return s.GetInvoice(ctx, id)
	case domain.KindQuotation:
		return s.GetQuotation(ctx, id)
	case domain.KindPurchase:
		return s.GetPurchase(ctx, id)
	case domain.KindDeliveryNote:
		return s.GetDeliveryNote(ctx, id)
	case domain.KindMaintenanceReport:
		return s.GetMaintenanceReport(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// List returns the filtered documents of kind as a typed slice.
func (s *Service) List(ctx context.Context, kind string, filter Filter) (any, error) {
	switch kind {
	case domain.KindInvoice:
		return s.ListInvoices(ctx, filter)
	case domain.KindQuotation:
		return s.ListQuotations(ctx, filter)
	case domain.KindPurchase:
		return s.ListPurchases(ctx, filter)
	case domain.KindDeliveryNote:
		return s.ListDeliveryNotes(ctx, filter)
	case domain.KindMaintenanceReport:
		return s.ListMaintenanceReports(ctx, filter)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func (s *Service) Delete(ctx context.Context, kind string, id string) error {
	if !ValidKind(kind) {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrNotFound
	}
	if err := s.docs.Delete(ctx, kind, id); err != nil {
		return err
	}
	metrics.IncDocument(kind, "delete")
	s.logger.Info("document deleted", zap.String("kind", kind), zap.String("id", id))
	return nil
}

// create stores the document under a fresh id, drawing another id when the
// random one is already taken.
func (s *Service) create(ctx context.Context, kind string, withID func(id string) any) (domain.CreatedResponse, error) {
	prefix := prefixes[kind]
	for attempt := 0; attempt < idAttempts; attempt++ {
		id, err := s.newID(prefix)
		if err != nil {
			return domain.CreatedResponse{}, err
		}
		record, err := toRecord(withID(id))
		if err != nil {
			return domain.CreatedResponse{}, fmt.Errorf("encode %s: %w", kind, err)
		}
		err = s.docs.Create(ctx, kind, id, record)
		if errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Debug("document id collision", zap.String("kind", kind), zap.String("id", id))
			continue
		}
		if err != nil {
			return domain.CreatedResponse{}, err
		}
		metrics.IncDocument(kind, "create")
		s.logger.Info("document created", zap.String("kind", kind), zap.String("id", id))
		return domain.CreatedResponse{ID: id}, nil
	}
	return domain.CreatedResponse{}, fmt.Errorf("allocate %s id: %w", kind, store.ErrAlreadyExists)
}

func (s *Service) get(ctx context.Context, kind string, id string, dst any) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrNotFound
	}
	record, err := s.docs.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if _, ok := record["id"]; !ok {
		record["id"] = id
	}
	return fromRecord(record, dst)
}

func list[T any](ctx context.Context, s *Service, kind string, filter Filter) ([]T, error) {
	records, err := s.docs.FetchAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	records = filter.apply(records, s.location)

	out := make([]T, 0, len(records))
	for _, record := range records {
		var doc T
		if err := fromRecord(record, &doc); err != nil {
			s.logger.Warn("skipping undecodable document",
				zap.String("kind", kind),
				zap.Any("id", record["id"]),
				zap.Error(err),
			)
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Service) seller() *domain.Seller {
	return &domain.Seller{
		Address:     s.company.Address,
		Email:       s.company.Email,
		PhoneNumber: s.company.PhoneNumber,
		VATNumber:   s.company.VATNumber,
		CRNumber:    s.company.CRNumber,
	}
}

func trimCustomer(c *domain.Customer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
}
