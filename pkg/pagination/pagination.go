package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Params are the page-based query parameters
type Params struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// Default returns the first page with the default size
func Default() *Params {
	return &Params{Page: 1, PerPage: defaultPerPage}
}

// Normalize clamps page and size into the accepted ranges
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
}

// Offset is the number of rows to skip
func (p *Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Meta describes the page that was returned
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewMeta computes page metadata for a total row count
func NewMeta(p *Params, total int64) *Meta {
	totalPages := 0
	if p.PerPage > 0 {
		totalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return &Meta{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}

// Result is a page of items
type Result[T any] struct {
	Items      []T   `json:"items"`
	Pagination *Meta `json:"pagination"`
}

// NewResult wraps items with page metadata. A nil slice is rendered as [].
func NewResult[T any](items []T, p *Params, total int64) *Result[T] {
	if items == nil {
		items = []T{}
	}
	return &Result[T]{Items: items, Pagination: NewMeta(p, total)}
}

// Cursor points at the last row of a keyset page
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CursorParams are the keyset query parameters
type CursorParams struct {
	Cursor string `form:"cursor" json:"cursor"`
	Limit  int    `form:"limit" json:"limit"`
}

// Normalize clamps the limit
func (c *CursorParams) Normalize() {
	if c.Limit < 1 {
		c.Limit = defaultPerPage
	}
	if c.Limit > maxPerPage {
		c.Limit = maxPerPage
	}
}

// Decode returns the cursor or nil when none was supplied
func (c *CursorParams) Decode() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cur Cursor
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	return &cur, nil
}

// EncodeCursor builds an opaque cursor
func EncodeCursor(id string, createdAt time.Time) string {
	data, _ := json.Marshal(Cursor{ID: id, CreatedAt: createdAt})
	return base64.RawURLEncoding.EncodeToString(data)
}

// CursorResult is a keyset page of items
type CursorResult[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
	Limit      int     `json:"limit"`
}

// NewCursorResult trims items fetched with limit+1 and sets the next cursor
func NewCursorResult[T any](items []T, limit int, key func(T) (string, time.Time)) *CursorResult[T] {
	res := &CursorResult[T]{Limit: limit}
	if len(items) > limit {
		items = items[:limit]
		res.HasNext = true
	}
	if items == nil {
		items = []T{}
	}
	res.Items = items
	if res.HasNext && len(items) > 0 {
		id, at := key(items[len(items)-1])
		next := EncodeCursor(id, at)
		res.NextCursor = &next
	}
	return res
}
