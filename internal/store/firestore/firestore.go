// Package firestore stores documents in Cloud Firestore, one Firestore
// collection per business collection.
package firestore

import (
	"context"
	"fmt"
	"strings"

	gcfirestore "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"invoicedesk/backend/internal/store"
)

type Store struct {
	client *gcfirestore.Client
}

func New(ctx context.Context, projectID string) (*Store, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	client, err := gcfirestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// FetchAll reads the whole collection. Server timestamps come back as
// time.Time values inside the record.
func (s *Store) FetchAll(ctx context.Context, collection string) ([]store.Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	snapshots, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}
	records := make([]store.Record, 0, len(snapshots))
	for _, snap := range snapshots {
		records = append(records, recordOf(snap))
	}
	return records, nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return recordOf(snap), nil
}

// Create writes a new document; createdAt is assigned by the server when the
// record does not carry one.
func (s *Store) Create(ctx context.Context, collection string, id string, record store.Record) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", store.ErrInvalidDocument)
	}
	data := make(map[string]interface{}, len(record)+1)
	for k, v := range record {
		data[k] = v
	}
	if _, ok := data[store.FieldCreatedAt]; !ok {
		data[store.FieldCreatedAt] = gcfirestore.ServerTimestamp
	}
	if _, err := s.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, gcfirestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func recordOf(snap *gcfirestore.DocumentSnapshot) store.Record {
	data := snap.Data()
	record := make(store.Record, len(data)+1)
	for k, v := range data {
		record[k] = v
	}
	if _, ok := record["id"]; !ok && snap.Ref != nil {
		record["id"] = snap.Ref.ID
	}
	return record
}

func validCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("%w: collection is required", store.ErrInvalidDocument)
	}
	return nil
}
