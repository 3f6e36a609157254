package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PageSize is the fixed number of records requested per page from the platform.
const PageSize = 200

// EntityKind identifies one of the catalog resources mirrored into the index.
type EntityKind string

const (
	KindProducts   EntityKind = "products"
	KindCategories EntityKind = "categories"
)

// Entity is a raw platform record as received from the webhook or the read API.
// Numeric values are kept as json.Number so ids round-trip unchanged.
type Entity map[string]any

// ID returns the entity's id and whether it was present.
func (e Entity) ID() (any, bool) {
	id, ok := e["id"]
	return id, ok
}

// Document is the flattened representation written to the search index.
type Document map[string]any

// ObjectID returns the document's index key formatted as a string.
// The boolean is false when the key is missing or null.
func (d Document) ObjectID() (string, bool) {
	v, ok := d["objectID"]
	if !ok || v == nil {
		return "", false
	}
	s := FormatID(v)
	return s, s != ""
}

// Pagination mirrors meta.pagination of the platform's list responses.
type Pagination struct {
	TotalPages *int `json:"total_pages,omitempty"`
}

// PageMeta mirrors the meta object of the platform's list responses.
type PageMeta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Page is one batch of records returned by the paginated read API.
type Page struct {
	Data []Entity `json:"data"`
	Meta PageMeta `json:"meta"`
}

// TotalPages returns meta.pagination.total_pages and whether it was present.
func (p *Page) TotalPages() (int, bool) {
	if p == nil || p.Meta.Pagination == nil || p.Meta.Pagination.TotalPages == nil {
		return 0, false
	}
	return *p.Meta.Pagination.TotalPages, true
}

// UpsertResult is what the index returns after accepting a document.
type UpsertResult struct {
	ObjectID any   `json:"objectID"`
	TaskID   int64 `json:"taskID"`
}

// FormatID renders a string or numeric identifier in its canonical textual form.
func FormatID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// DecodeJSON decodes raw JSON into v keeping numbers as json.Number.
func DecodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
