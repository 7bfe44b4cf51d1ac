package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchemaVersion is stamped on every document written by this service.
// Documents without it were produced by the legacy submission forms.
const SchemaVersion = 2

// Document is the raw field map exchanged with a document store.
// The store puts the document id under "id".
type Document map[string]any

// ID returns the document id.
func (d Document) ID() string {
	return d.String("id")
}

// String returns the first non-empty string value among keys.
func (d Document) String(keys ...string) string {
	for _, k := range keys {
		switch v := d[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case nil:
		case json.Number:
			return v.String()
		case int, int32, int64, float64:
			return ParseAmount(v).String()
		}
	}
	return ""
}

// Bool reads a boolean, accepting "true"/"yes" strings.
func (d Document) Bool(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
		return strings.EqualFold(v, "yes")
	}
	return false
}

// Int returns the first key that holds something parseable as an integer.
func (d Document) Int(keys ...string) int {
	for _, k := range keys {
		if _, ok := d[k]; !ok {
			continue
		}
		if n, ok := parseDecimal(d[k]); ok {
			return int(n.IntPart())
		}
	}
	return 0
}

// Decimal returns the first key that holds a parseable amount, or zero.
func (d Document) Decimal(keys ...string) decimal.Decimal {
	for _, k := range keys {
		if n, ok := parseDecimal(d[k]); ok {
			return n
		}
	}
	return decimal.Zero
}

// Time returns the first key that holds a recognisable timestamp.
func (d Document) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if t, ok := TimeOf(d[k]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Map returns a nested field map. BSON documents are converted.
func (d Document) Map(key string) map[string]any {
	switch v := d[key].(type) {
	case map[string]any:
		return v
	case primitive.M:
		return map[string]any(v)
	case Document:
		return map[string]any(v)
	case primitive.D:
		return map[string]any(v.Map())
	}
	return nil
}

// ParseAmount parses a numeric value encoded either as a number or as a
// string. Missing or unparsable values are zero.
func ParseAmount(v any) decimal.Decimal {
	n, _ := parseDecimal(v)
	return n
}

// AmountOf is ParseAmount that also reports whether v held a number.
func AmountOf(v any) (decimal.Decimal, bool) {
	return parseDecimal(v)
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case decimal.NullDecimal:
		return n.Decimal, n.Valid
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case primitive.Decimal128:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeOf converts the timestamp encodings found in stored documents into a
// time.Time: native values, BSON dates, {seconds: n} maps and date strings.
func TimeOf(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case primitive.DateTime:
		return t.Time().UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	case primitive.M:
		return secondsOf(map[string]any(t))
	case map[string]any:
		return secondsOf(t)
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func secondsOf(m map[string]any) (time.Time, bool) {
	raw, ok := m["seconds"]
	if !ok {
		raw, ok = m["_seconds"]
	}
	if !ok {
		return time.Time{}, false
	}
	secs, ok := parseDecimal(raw)
	if !ok {
		return time.Time{}, false
	}
	nanos := ParseAmount(m["nanoseconds"])
	return time.Unix(secs.IntPart(), nanos.IntPart()).UTC(), true
}
