package indexer

import (
	"maps"
	"time"
)

// Document maps field names to a scalar or a []string.
type Document map[string]any

// SetString sets a single-valued field. Empty values are not stored.
func (d Document) SetString(field, value string) {
	if value == "" {
		return
	}
	d[field] = value
}

// SetStrings sets a multi-valued field, dropping empty elements. An empty
// result is not stored.
func (d Document) SetStrings(field string, values []string) {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return
	}
	d[field] = kept
}

// SetInt sets a numeric single-valued field.
func (d Document) SetInt(field string, value int) {
	d[field] = value
}

// SetTime sets a date field in UTC ISO 8601 form.
func (d Document) SetTime(field string, t *time.Time) {
	if t == nil || t.IsZero() {
		return
	}
	d[field] = FormatTime(*t)
}

// Merge copies every field of other into d, overwriting collisions.
func (d Document) Merge(other Document) {
	maps.Copy(d, other)
}

// String returns a single-valued field, or "".
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Strings returns a multi-valued field, or nil.
func (d Document) Strings(field string) []string {
	s, _ := d[field].([]string)
	return s
}

// FormatTime renders t the way date fields are indexed.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
