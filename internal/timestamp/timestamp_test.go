package timestamp

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStoreTimestamp struct {
	at  time.Time
	err error
}

func (f fakeStoreTimestamp) ToDate() (time.Time, error) {
	return f.at, f.err
}

type panickingTimestamp struct{}

func (panickingTimestamp) ToDate() (time.Time, error) {
	panic("broken converter")
}

func TestEquivalentShapesNormalizeToSameInstant(t *testing.T) {
	want := time.Unix(1700000000, 0).UTC()
	shapes := map[string]any{
		"seconds mapping":        map[string]any{"seconds": 1700000000, "nanoseconds": 0},
		"seconds string mapping": map[string]any{"seconds": "1700000000"},
		"epoch millis":           int64(1700000000000),
		"epoch seconds":          1700000000,
		"json number millis":     json.Number("1700000000000"),
		"iso string":             "2023-11-14T22:13:20Z",
		"iso string with offset": "2023-11-15T01:13:20+03:00",
		"native time":            want,
		"converter":              fakeStoreTimestamp{at: want},
	}

	for name, raw := range shapes {
		t.Run(name, func(t *testing.T) {
			got, ok := NormalizeRaw(raw)
			require.True(t, ok)
			assert.True(t, got.Equal(want), "got %s", got)
		})
	}
}

func TestClassifyTagsEachShape(t *testing.T) {
	now := time.Now()
	cases := []struct {
		raw  any
		want Kind
	}{
		{fakeStoreTimestamp{}, DateConverter},
		{map[string]any{"seconds": 1.0}, EpochSecondsObject},
		{map[string]int64{"seconds": 1}, EpochSecondsObject},
		{42.0, EpochNumber},
		{"2024-01-01", ISOString},
		{now, NativeDate},
		{&now, NativeDate},
		{nil, Unknown},
		{true, Unknown},
		{"", Unknown},
		{map[string]any{"nanos": 5}, Unknown},
		{map[string]any{"seconds": true}, Unknown},
		{[]any{1, 2}, Unknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.raw).Kind, "%#v", tc.raw)
	}
}

func TestUnrecognisedShapesResolveToFalse(t *testing.T) {
	for _, raw := range []any{
		true,
		struct{ Name string }{"x"},
		map[string]any{"toDate": "nope"},
		"not a date",
		map[string]any{"seconds": "abc"},
		math.NaN(),
		math.Inf(1),
		1e300,
		fakeStoreTimestamp{err: errors.New("bad")},
		panickingTimestamp{},
	} {
		_, ok := NormalizeRaw(raw)
		assert.False(t, ok, "%#v", raw)
	}
}

func TestEpochNumberMagnitudeRules(t *testing.T) {
	got, ok := NormalizeRaw(1e12 + 1)
	require.True(t, ok)
	assert.Equal(t, int64(1e12+1), got.UnixMilli())

	got, ok = NormalizeRaw(1e9 + 1)
	require.True(t, ok)
	assert.Equal(t, int64(1e9+1), got.Unix())

	// Small numbers are taken as milliseconds.
	got, ok = NormalizeRaw(5000)
	require.True(t, ok)
	assert.Equal(t, int64(5000), got.UnixMilli())
}

func TestSecondsMappingAddsWholeMillisFromNanoseconds(t *testing.T) {
	got, ok := NormalizeRaw(map[string]any{"seconds": 1700000000, "nanoseconds": 123999999})
	require.True(t, ok)
	assert.Equal(t, int64(1700000000123), got.UnixMilli())
}

func TestSecondsMappingReadsBooleanNanoseconds(t *testing.T) {
	got, ok := NormalizeRaw(map[string]any{"seconds": 1700000000, "nanoseconds": true})
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), got.UnixMilli())

	got, ok = NormalizeRaw(map[string]any{"seconds": 1700000000, "nanoseconds": false})
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), got.UnixMilli())
}

func TestNumberAcceptsEveryNumericKind(t *testing.T) {
	for _, raw := range []any{int8(3), int16(3), uint(3), uint8(3), uint16(3), uint32(3), uint64(3), float32(3), json.Number("3")} {
		f, ok := Number(raw)
		assert.True(t, ok, "%T", raw)
		assert.Equal(t, 3.0, f, "%T", raw)
	}
	_, ok := Number("3")
	assert.False(t, ok)
}

func TestTextWithoutOffsetIsUTC(t *testing.T) {
	got, ok := NormalizeRaw("2024-02-20")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC), got)

	got, ok = NormalizeRaw("Tue Feb 20 2024 10:00:00 GMT+0300 (Arabian Standard Time)")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, time.February, 20, 7, 0, 0, 0, time.UTC)), "got %s", got)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "epoch_seconds_object", EpochSecondsObject.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
