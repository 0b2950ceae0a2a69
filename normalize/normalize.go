/*
Package normalize canonicalizes upstream JSON payloads.

PURPOSE:
  Upstream collection queries return wildly inconsistent shapes: the
  collection may be the root array, live under "data" (as an array OR a
  single object), under "applications", or under the collection's own name.
  Field names drift too (employeeID vs employeeId vs empId vs employee).
  This package is the ONLY place that knows about those variants; everything
  downstream sees the typed entity model.

ALGORITHM:
  1. Locate the record container. If none of the known shapes matches, the
     whole call fails with a NormalizationError.
  2. For each record, resolve every canonical field through an ordered
     fallback chain of known aliases, taking the first defined value.
  3. Unresolved fields get a documented default ("", 0, nil for optionals).
     Numeric fields pass through a permissive parse defaulting to 0.

FAILURE MODEL:
  Only a missing container is fatal. A malformed record degrades to
  defaulted fields rather than discarding the batch - schema drift in one
  row must not blank an employee's whole dashboard.

IDEMPOTENCE:
  Every alias chain lists the canonical name first, so normalizing an
  already-canonical record yields the same record.

SEE ALSO:
  - aliases.go: per-entity alias tables and entity builders
  - entity: the canonical model produced here
*/
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/entity"
)

// ErrNoCollection is returned when no recognizable record container is
// found in a payload. Use errors.Is to detect it.
var ErrNoCollection = errors.New("no recognizable collection in payload")

// NormalizationError reports an unusable payload shape. It is fatal to the
// fetch that produced it; per-record problems never raise it.
type NormalizationError struct {
	Collection string
	Detail     string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize %s payload: %s", e.Collection, e.Detail)
}

func (e *NormalizationError) Unwrap() error { return ErrNoCollection }

// =============================================================================
// CONTAINER DETECTION
// =============================================================================

// Records locates the record container in a decoded payload and returns the
// raw records. Accepted shapes, in order:
//
//	[...]                      root array
//	{"data": [...]}            data array
//	{"data": {...}}            single record under data
//	{"applications": [...]}    legacy applications key
//	{"<collection>": [...]}    collection-named key
//
// Non-object entries degrade to empty records (all fields defaulted).
func Records(v any, collection string) ([]Record, error) {
	switch c := v.(type) {
	case []any:
		return toRecords(c), nil
	case map[string]any:
		if d, ok := c["data"]; ok {
			switch data := d.(type) {
			case []any:
				return toRecords(data), nil
			case map[string]any:
				return []Record{Record(data)}, nil
			}
		}
		if a, ok := c["applications"].([]any); ok {
			return toRecords(a), nil
		}
		if collection != "" {
			if named, ok := c[collection].([]any); ok {
				return toRecords(named), nil
			}
		}
	}
	return nil, &NormalizationError{Collection: collection, Detail: "unrecognized container shape"}
}

// Parse decodes raw JSON and locates the record container.
func Parse(raw []byte, collection string) ([]Record, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &NormalizationError{Collection: collection, Detail: err.Error()}
	}
	return Records(v, collection)
}

func toRecords(items []any) []Record {
	records := make([]Record, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			records[i] = Record(m)
		} else {
			records[i] = Record{} // malformed row: defaults, not a dropped batch
		}
	}
	return records
}

// =============================================================================
// RECORD - Alias-resolving field access
// =============================================================================

// Record is one raw upstream record. Field accessors walk an ordered alias
// chain and return the first defined value, falling back to a default.
type Record map[string]any

func (r Record) first(aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := r[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Str resolves a string field. Default: "".
func (r Record) Str(aliases ...string) string {
	v, ok := r.first(aliases)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Num resolves a numeric field through a permissive parse. Default: 0.
func (r Record) Num(aliases ...string) decimal.Decimal {
	v, ok := r.first(aliases)
	if !ok {
		return decimal.Zero
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
			return d
		}
		// Tolerate trailing junk ("12 days") the way upstream clients did.
		if f, err := strconv.ParseFloat(leadingNumber(n), 64); err == nil {
			return decimal.NewFromFloat(f)
		}
		return decimal.Zero
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// Int resolves an integer field. Default: 0. Fractions truncate.
func (r Record) Int(aliases ...string) int {
	return int(r.Num(aliases...).IntPart())
}

// Bool resolves a boolean field. Default: false. Accepts "true"/"Y"/"1".
func (r Record) Bool(aliases ...string) bool {
	v, ok := r.first(aliases)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "y", "yes", "1":
			return true
		}
		return false
	case float64:
		return b != 0
	default:
		return false
	}
}

// Date resolves a date field. Default: zero CalendarDate.
func (r Record) Date(aliases ...string) entity.CalendarDate {
	s := r.Str(aliases...)
	if s == "" {
		return entity.CalendarDate{}
	}
	d, err := entity.ParseDate(s)
	if err != nil {
		return entity.CalendarDate{}
	}
	return d
}

// OptDate resolves an optional date field. Default: nil.
func (r Record) OptDate(aliases ...string) *entity.CalendarDate {
	d := r.Date(aliases...)
	if d.IsZero() {
		return nil
	}
	return &d
}

// List resolves a nested record array (e.g. the leaves of an application).
// Default: nil.
func (r Record) List(aliases ...string) []Record {
	v, ok := r.first(aliases)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	return toRecords(items)
}

func leadingNumber(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for i, c := range s {
		if (c >= '0' && c <= '9') || c == '.' || (i == 0 && (c == '-' || c == '+')) {
			end = i + 1
			continue
		}
		break
	}
	return s[:end]
}
