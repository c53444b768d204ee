package pagination

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

const (
	DefaultPage   = 0
	DefaultSize   = 20
	MaxSize       = 100
	DefaultSortBy = "createdAt"
)

// Request describes the shape of a paged query: which slice of the
// collection to read and how it is ordered.
type Request struct {
	Page     int    `json:"page"`
	Size     int    `json:"size"`
	SortBy   string `json:"sortBy"`
	IsNewest bool   `json:"isNewest"`
}

// DefaultRequest returns the first page, newest first, ordered by creation time.
func DefaultRequest() Request {
	return Request{
		Page:     DefaultPage,
		Size:     DefaultSize,
		SortBy:   DefaultSortBy,
		IsNewest: true,
	}
}

// Normalize fills zero values with defaults. Page and IsNewest are kept as is.
func (r Request) Normalize() Request {
	if r.Size == 0 {
		r.Size = DefaultSize
	}
	if r.SortBy == "" {
		r.SortBy = DefaultSortBy
	}
	return r
}

// Validate checks bounds on page and size.
func (r Request) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Page, validation.Min(0)),
			validation.Field(&r.Size, validation.Required, validation.Min(1), validation.Max(MaxSize)),
			validation.Field(&r.SortBy, validation.Required),
		)
	}, "invalid page request"); err != nil {
		return err
	}
	return nil
}

// Offset returns the number of rows to skip for this page.
func (r Request) Offset() int {
	return r.Page * r.Size
}
