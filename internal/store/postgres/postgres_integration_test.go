package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"invoicedesk/backend/internal/store"
	"invoicedesk/backend/internal/timestamp"
)

func TestDocumentRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("INVOICEDESK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set INVOICEDESK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	collection := fmt.Sprintf("it-invoices-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, collection)
	})

	fixed := time.Date(2024, time.February, 15, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Create(ctx, collection, "INV-00000001", store.Record{"id": "INV-00000001", "taxTotal": "40.25"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, collection, "INV-00000001", store.Record{"id": "INV-00000001"}); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate id, got %v", err)
	}

	got, err := s.Get(ctx, collection, "INV-00000001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["taxTotal"] != "40.25" {
		t.Fatalf("expected taxTotal to survive as written, got %#v", got["taxTotal"])
	}
	if _, ok := got[store.FieldCreatedAt].(json.Number); !ok {
		t.Fatalf("expected createdAt as json.Number, got %T", got[store.FieldCreatedAt])
	}
	createdAt, ok := timestamp.NormalizeRaw(got[store.FieldCreatedAt])
	if !ok || !createdAt.Equal(fixed) {
		t.Fatalf("expected createdAt %s, got %s (ok=%v)", fixed, createdAt, ok)
	}

	all, err := s.FetchAll(ctx, collection)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 document, got %d", len(all))
	}

	if err := s.Delete(ctx, collection, "INV-00000001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, collection, "INV-00000001"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.Get(ctx, collection, "INV-00000001"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
