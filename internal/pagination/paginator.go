// Package pagination slices ordered sequences into fixed-size pages.
//
// Out-of-range page numbers never fail: anything below 1 or unparsable maps
// to page 1, anything past the end maps to the last page.
package pagination

import (
	"context"
	"strconv"
	"strings"
)

// Source is an ordered, countable sequence. Implementations may be lazy
// (a database query) or materialized (SliceSource).
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one window of a Source plus navigation metadata.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	PageSize    int  `json:"page_size"`
	Count       int  `json:"count"`
	NumPages    int  `json:"num_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PageSize + 1
}

// ParseNumber reads the page query parameter; absent or non-numeric input is page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages is ceil(count/size). An empty sequence still has one (empty) page.
func NumPages(count, size int) int {
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Paginate returns the requested page of src, clamped into [1, NumPages].
func Paginate[T any](ctx context.Context, src Source[T], size int, rawPage string) (*Page[T], error) {
	if size < 1 {
		size = 1
	}
	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	pages := NumPages(count, size)
	number := ParseNumber(rawPage)
	if number > pages {
		number = pages
	}

	items := []T{}
	if count > 0 {
		items, err = src.Slice(ctx, (number-1)*size, size)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
	}

	return &Page[T]{
		Items:       items,
		Number:      number,
		PageSize:    size,
		Count:       count,
		NumPages:    pages,
		HasPrevious: number > 1,
		HasNext:     number < pages,
	}, nil
}

// SliceSource adapts an already ordered slice.
type SliceSource[T any] []T

func (s SliceSource[T]) Count(context.Context) (int, error) { return len(s), nil }

func (s SliceSource[T]) Slice(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	out := make([]T, end-offset)
	copy(out, s[offset:end])
	return out, nil
}
