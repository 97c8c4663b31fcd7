package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"invoicedesk/backend/internal/domain"
	"invoicedesk/backend/internal/store"
)

// Store keeps every collection in process memory. It is the default backend
// for development and the backend used by handler and service tests.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]store.Record
	now         func() time.Time
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]store.Record),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewSeeded returns a store holding a few demo documents dated in the current
// quarter, with createdAt values in the different shapes older clients wrote.
func NewSeeded() *Store {
	s := New()
	now := s.now()
	seeds := []struct {
		collection string
		id         string
		record     store.Record
	}{
		{domain.KindInvoice, "INV-10000001", store.Record{
			"id":       "INV-10000001",
			"date":     now.Format(time.RFC3339),
			"customer": map[string]any{"name": "Gulf Fabrication Co."},
			"items": []any{
				map[string]any{"title": "Welding service", "quantity": 2, "unitPrice": 500.0, "unitTotal": 1000.0, "taxAmount": 150.0},
			},
			"subTotal":  1000.0,
			"taxTotal":  150.0,
			"total":     1150.0,
			"createdAt": now,
		}},
		{domain.KindPurchase, "PUR-10000001", store.Record{
			"id":          "PUR-10000001",
			"date":        now.Format(time.RFC3339),
			"description": "Steel sheets",
			"subTotal":    400.0,
			"taxTotal":    "60.00",
			"total":       460.0,
			"createdAt":   map[string]any{"seconds": now.Unix(), "nanoseconds": 0},
		}},
		{domain.KindQuotation, "QUO-10000001", store.Record{
			"id":       "QUO-10000001",
			"customer": map[string]any{"name": "Jubail Marine"},
			"items": []any{
				map[string]any{"title": "Pump overhaul", "quantity": 1, "unitPrice": 2200.0, "unitTotal": 2200.0, "taxAmount": 330.0},
			},
			"subTotal":  2200.0,
			"taxTotal":  330.0,
			"total":     2530.0,
			"createdAt": now.UnixMilli(),
		}},
	}
	for _, seed := range seeds {
		_ = s.Create(context.Background(), seed.collection, seed.id, seed.record)
	}
	return s
}

func (s *Store) FetchAll(_ context.Context, collection string) ([]store.Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, deepCopy(docs[id]))
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, collection string, id string) (store.Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return deepCopy(record), nil
}

func (s *Store) Create(_ context.Context, collection string, id string, record store.Record) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", store.ErrInvalidDocument)
	}
	copied := deepCopy(record)
	if copied == nil {
		copied = store.Record{}
	}
	if _, ok := copied[store.FieldCreatedAt]; !ok {
		copied[store.FieldCreatedAt] = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	if docs == nil {
		docs = make(map[string]store.Record)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return store.ErrAlreadyExists
	}
	docs[id] = copied
	return nil
}

func (s *Store) Delete(_ context.Context, collection string, id string) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	if _, ok := docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(docs, id)
	return nil
}

func validCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("%w: collection is required", store.ErrInvalidDocument)
	}
	return nil
}

func deepCopy(record store.Record) store.Record {
	if record == nil {
		return nil
	}
	out := make(store.Record, len(record))
	for k, v := range record {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch typed := v.(type) {
	case store.Record:
		return deepCopy(typed)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = copyValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = copyValue(inner)
		}
		return out
	default:
		return v
	}
}
