// Package lead defines the normalized record model shared by every source,
// the harvest query, and the deduplication policy applied to merged results.
package lead

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Reserved field names. Every record carries these three; strategies may set
// them, and the orchestrator fills in any that are missing.
const (
	FieldSource   = "Source"
	FieldIndustry = "Industry"
	FieldLocation = "Location"
)

// identityFields, in priority order. The first non-empty one identifies the
// real-world entity a record describes.
var identityFields = []string{"Name", "Company", "Organization"}

// Category classifies what kind of entity a source produces.
type Category string

const (
	CategoryBusiness      Category = "business"
	CategoryPersonal      Category = "personal"
	CategoryInstitutional Category = "institutional"
)

// ParseCategory validates a user-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBusiness, CategoryPersonal, CategoryInstitutional:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown lead type %q (want business, personal or institutional)", s)
}

// Record is one harvested entity. Fields keep insertion order so exports are
// stable; sources append their fields in a deliberate order and the exporter
// relies on it for "natural" column placement.
//
// A Record is treated as immutable once a strategy returns it. The only
// post-emission mutation allowed is WithReserved, which copies.
type Record struct {
	fields map[string]string
	order  []string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]string)}
}

// Set stores a field value, preserving first-insertion order.
func (r *Record) Set(name, value string) {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = value
}

// SetInt stores an integer field as its decimal string.
func (r *Record) SetInt(name string, value int) {
	r.Set(name, strconv.Itoa(value))
}

// Get returns the field value, or "" if the field is absent.
func (r *Record) Get(name string) string {
	return r.fields[name]
}

// Has reports whether the field is present, even if empty.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Fields returns field names in insertion order. The caller must not mutate
// the returned slice.
func (r *Record) Fields() []string {
	return r.order
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.order)
}

// Identity returns the value used for deduplication: the first non-empty of
// Name, Company, Organization. Empty means the record is unidentifiable.
func (r *Record) Identity() string {
	for _, f := range identityFields {
		if v := r.fields[f]; v != "" {
			return v
		}
	}
	return ""
}

// Source returns the reserved Source field.
func (r *Record) Source() string { return r.fields[FieldSource] }

// Clone returns an independent copy.
func (r *Record) Clone() *Record {
	out := &Record{
		fields: make(map[string]string, len(r.fields)),
		order:  make([]string, len(r.order)),
	}
	copy(out.order, r.order)
	for k, v := range r.fields {
		out.fields[k] = v
	}
	return out
}

// WithReserved returns a copy with Source/Industry/Location filled in where
// the record does not already carry a non-empty value. Domain fields are
// never touched.
func (r *Record) WithReserved(source, industry, location string) *Record {
	out := r.Clone()
	for _, rf := range []struct{ name, value string }{
		{FieldSource, source},
		{FieldIndustry, industry},
		{FieldLocation, location},
	} {
		if out.fields[rf.name] == "" {
			out.Set(rf.name, rf.value)
		}
	}
	return out
}

// MarshalJSON emits a JSON object with fields in insertion order, matching
// the column order of the tabular exports.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.fields[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Query describes one harvest invocation.
type Query struct {
	Industry    string
	Location    string
	Category    Category
	TargetCount int

	// Sources optionally restricts the harvest to specific source ids. Empty
	// means "all defaults for Category".
	Sources []string
}

// Validate rejects queries the orchestrator cannot act on.
func (q Query) Validate() error {
	if q.Industry == "" {
		return fmt.Errorf("query: industry is required")
	}
	if q.Location == "" {
		return fmt.Errorf("query: location is required")
	}
	if _, err := ParseCategory(string(q.Category)); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if q.TargetCount < 1 {
		return fmt.Errorf("query: target count must be >= 1, got %d", q.TargetCount)
	}
	return nil
}
