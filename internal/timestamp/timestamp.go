// Package timestamp turns the creation-time shapes found in stored documents
// into a single instant.
//
// Stored records carry createdAt in whatever form the writer produced: a native
// time, a document-store timestamp object, a {seconds, nanoseconds} mapping,
// an epoch number at second or millisecond resolution, or a date string.
// Classify tags a raw value with its shape; Normalize resolves a tagged value
// to an instant. Neither panics: anything unrecognised resolves to false.
package timestamp

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	Unknown Kind = iota
	DateConverter
	EpochSecondsObject
	EpochNumber
	ISOString
	NativeDate
)

func (k Kind) String() string {
	switch k {
	case DateConverter:
		return "date_converter"
	case EpochSecondsObject:
		return "epoch_seconds_object"
	case EpochNumber:
		return "epoch_number"
	case ISOString:
		return "iso_string"
	case NativeDate:
		return "native_date"
	default:
		return "unknown"
	}
}

// Converter is implemented by store-specific timestamp types that know how to
// become a time.Time.
type Converter interface {
	ToDate() (time.Time, error)
}

// Value is a raw createdAt tagged with its shape. Only the fields belonging to
// Kind are meaningful.
type Value struct {
	Kind        Kind
	Converter   Converter
	Seconds     float64
	Nanoseconds float64
	Number      float64
	Text        string
	Time        time.Time
}

const (
	millisThreshold  = 1e12
	secondsThreshold = 1e9
	// maxEpochMillis is the largest magnitude an instant may have, matching the
	// range document-store clients accept.
	maxEpochMillis = 8.64e15
)

// Classify inspects a raw stored value and tags it. The order of checks is
// significant: a converter wins over everything else, then a seconds mapping,
// then plain numbers, strings and native times.
func Classify(raw any) Value {
	if raw == nil {
		return Value{Kind: Unknown}
	}
	if c, ok := raw.(Converter); ok {
		return Value{Kind: DateConverter, Converter: c}
	}
	if m, ok := asMapping(raw); ok {
		secRaw := m["seconds"]
		_, isText := secRaw.(string)
		_, isNumber := Number(secRaw)
		if !isText && !isNumber {
			return Value{Kind: Unknown}
		}
		return Value{
			Kind:        EpochSecondsObject,
			Seconds:     looseNumber(secRaw),
			Nanoseconds: nanosField(m["nanoseconds"]),
		}
	}
	if n, ok := Number(raw); ok {
		return Value{Kind: EpochNumber, Number: n}
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return Value{Kind: Unknown}
		}
		return Value{Kind: ISOString, Text: v}
	case time.Time:
		return Value{Kind: NativeDate, Time: v}
	case *time.Time:
		if v == nil {
			return Value{Kind: Unknown}
		}
		return Value{Kind: NativeDate, Time: *v}
	}
	return Value{Kind: Unknown}
}

// Normalize resolves a tagged value to an instant. The boolean is false when
// the value cannot represent a valid instant.
func Normalize(v Value) (t time.Time, ok bool) {
	switch v.Kind {
	case DateConverter:
		return fromConverter(v.Converter)
	case EpochSecondsObject:
		ms := v.Seconds*1000 + math.Floor(v.Nanoseconds/1e6)
		return fromMillis(ms)
	case EpochNumber:
		switch {
		case v.Number > millisThreshold:
			return fromMillis(v.Number)
		case v.Number > secondsThreshold:
			return fromMillis(v.Number * 1000)
		default:
			// Small values are kept as milliseconds; legacy records rely on it.
			return fromMillis(v.Number)
		}
	case ISOString:
		return parseText(v.Text)
	case NativeDate:
		return v.Time, true
	case Unknown:
		return time.Time{}, false
	}
	return time.Time{}, false
}

// NormalizeRaw is Classify followed by Normalize.
func NormalizeRaw(raw any) (time.Time, bool) {
	return Normalize(Classify(raw))
}

func fromConverter(c Converter) (t time.Time, ok bool) {
	if c == nil {
		return time.Time{}, false
	}
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	converted, err := c.ToDate()
	if err != nil {
		return time.Time{}, false
	}
	return converted, true
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(math.Trunc(ms))).UTC(), true
}

var textLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseText accepts the date strings browsers and document-store exports emit.
// Strings without an offset are read as UTC.
func parseText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// "Mon Jan 02 2006 15:04:05 GMT+0300 (Arabian Standard Time)"
	if idx := strings.Index(s, " ("); idx > 0 && strings.HasSuffix(s, ")") {
		s = s[:idx]
	}
	for _, layout := range textLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func asMapping(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]float64:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[string]int64:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}
	return nil, false
}

// Number converts any Go numeric type, or a json.Number, to float64. The
// second result is false for everything else.
func Number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// looseNumber converts a number or numeric string; anything else is NaN so the
// resulting instant is rejected downstream.
func looseNumber(raw any) float64 {
	if f, ok := Number(raw); ok {
		return f
	}
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

func nanosField(raw any) float64 {
	if raw == nil {
		return 0
	}
	if b, ok := raw.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return looseNumber(raw)
}
