// Package paging implements cursor-based pagination for public job queries.
package paging

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Params holds the unified pagination parameters.
type Params struct {
	Cursor string `json:"cursor" form:"cursor"`
	Limit  int    `json:"limit" form:"limit"`
}

// Result holds the pagination result.
type Result[T any] struct {
	Items       []T    `json:"items"`
	Total       int    `json:"total,omitempty"`
	NextCursor  string `json:"next,omitempty"`
	HasNextPage bool   `json:"has_next"`
}

// NormalizeParams ensures that Limit is within an acceptable range.
func NormalizeParams(params Params) Params {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	return params
}

// EncodeCursor encodes a timestamp to a cursor string.
func EncodeCursor(t time.Time) string {
	return base64.StdEncoding.EncodeToString([]byte(t.Format(time.RFC3339Nano)))
}

// DecodeCursor decodes a cursor string to a timestamp.
func DecodeCursor(cursor string) (time.Time, error) {
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, string(b))
}

// PagingFunc fetches one page worth of items. It is called with limit+1 so
// Paginate can detect whether a next page exists.
type PagingFunc[T any] func(cursor string, limit int) (items []T, total int, err error)

// CursorFunc extracts the cursor timestamp from an item.
type CursorFunc[T any] func(item T) time.Time

// Paginate applies pagination using the provided fetch and cursor functions.
func Paginate[T any](params Params, fetch PagingFunc[T], cursorOf CursorFunc[T]) (*Result[T], error) {
	params = NormalizeParams(params)

	items, total, err := fetch(params.Cursor, params.Limit+1)
	if err != nil {
		return nil, fmt.Errorf("pagination error: %w", err)
	}

	result := &Result[T]{Total: total}
	if len(items) > params.Limit {
		items = items[:params.Limit]
		result.HasNextPage = true
		result.NextCursor = EncodeCursor(cursorOf(items[len(items)-1]))
	}
	result.Items = items

	return result, nil
}
