package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidDocument = errors.New("invalid document")
)

// Record is a stored document as free-form key/value data.
type Record map[string]any

// FieldCreatedAt is assigned by the store when a record is written without it.
const FieldCreatedAt = "createdAt"

// DocumentStore is the document database behind every business collection.
type DocumentStore interface {
	FetchAll(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection string, id string) (Record, error)
	Create(ctx context.Context, collection string, id string, record Record) error
	Delete(ctx context.Context, collection string, id string) error
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
