package documents

import (
	"encoding/json"
	"fmt"
	"time"

	"invoicedesk/backend/internal/stats"
	"invoicedesk/backend/internal/store"
	"invoicedesk/backend/internal/timestamp"
)

// dateFields hold instants that may be stored in any timestamp shape.
var dateFields = []string{store.FieldCreatedAt, "date", "dueDate"}

// Money fields written by older clients may hold text such as "60.00".
var (
	amountFields     = []string{"subTotal", "taxTotal", "total", "totalCost"}
	lineAmountFields = map[string][]string{
		"items":  {"unitPrice", "taxAmount", "unitTotal"},
		"repair": {"price", "labourHours"},
	}
)

func toRecord(doc any) (store.Record, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var record store.Record
	if err := json.Unmarshal(encoded, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// fromRecord decodes a stored record into dst. Date fields are resolved
// through the timestamp normalizer first and textual amounts are read by their
// leading number. Values that resolve to nothing are dropped rather than
// failing the whole document.
func fromRecord(record store.Record, dst any) error {
	normalized := record.Clone()
	for _, field := range dateFields {
		raw, ok := normalized[field]
		if !ok {
			continue
		}
		if t, ok := timestamp.NormalizeRaw(raw); ok {
			normalized[field] = t.UTC().Format(time.RFC3339Nano)
		} else {
			delete(normalized, field)
		}
	}
	coerceAmounts(normalized, amountFields)
	for list, fields := range lineAmountFields {
		if lines, ok := normalized[list].([]any); ok {
			normalized[list] = coerceLineAmounts(lines, fields)
		}
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("encode stored document: %w", err)
	}
	if err := json.Unmarshal(encoded, dst); err != nil {
		return fmt.Errorf("decode stored document: %w", err)
	}
	return nil
}

func coerceAmounts(m map[string]any, fields []string) {
	for _, field := range fields {
		text, ok := m[field].(string)
		if !ok {
			continue
		}
		amount, malformed := stats.CoerceTax(text)
		if malformed {
			delete(m, field)
			continue
		}
		m[field] = amount.InexactFloat64()
	}
}

func coerceLineAmounts(lines []any, fields []string) []any {
	out := make([]any, len(lines))
	for i, line := range lines {
		m, ok := line.(map[string]any)
		if !ok {
			out[i] = line
			continue
		}
		copied := make(map[string]any, len(m))
		for k, v := range m {
			copied[k] = v
		}
		coerceAmounts(copied, fields)
		out[i] = copied
	}
	return out
}

func recordTime(record store.Record, field string) (time.Time, bool) {
	return timestamp.NormalizeRaw(record[field])
}
