package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"invoicedesk/backend/internal/store"
)

// Store keeps every collection in a single JSONB table keyed by
// (collection, id). Payloads are stored as written so the stats pipeline sees
// the same loose shapes it would see from any other document store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the documents table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (s *Store) FetchAll(ctx context.Context, collection string) ([]store.Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM documents
		WHERE collection = $1
		ORDER BY id
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]store.Record, 0, 64)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		record, err := decodePayload(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Record, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return decodePayload(payload)
}

// Create inserts a new document. A record written without createdAt gets the
// current time in epoch milliseconds, the shape most legacy records carry.
func (s *Store) Create(ctx context.Context, collection string, id string, record store.Record) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", store.ErrInvalidDocument)
	}
	payload := record.Clone()
	if payload == nil {
		payload = store.Record{}
	}
	if _, ok := payload[store.FieldCreatedAt]; !ok {
		payload[store.FieldCreatedAt] = s.now().UnixMilli()
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidDocument, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, payload, created_at)
		VALUES ($1, $2, $3::jsonb, now())
	`, collection, id, string(encoded))
	if err != nil {
		if isUniqueViolation(err) {
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
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// decodePayload keeps numbers as json.Number so epoch milliseconds survive
// without float rounding.
func decodePayload(payload []byte) (store.Record, error) {
	decoder := json.NewDecoder(strings.NewReader(string(payload)))
	decoder.UseNumber()
	var record store.Record
	if err := decoder.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode document payload: %w", err)
	}
	return record, nil
}

func validCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("%w: collection is required", store.ErrInvalidDocument)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
