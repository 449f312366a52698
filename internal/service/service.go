// Package service provides the read-side business logic behind the tender API
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

var (
	// ErrTenderNotFound is returned when a tender is not stored
	ErrTenderNotFound = errors.New("tender not found")
	// ErrInvalidOption is returned when a request option is rejected
	ErrInvalidOption = errors.New("invalid option")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go TenderService

// TenderService defines the read operations on stored tenders
type TenderService interface {
	// CheckReadiness checks if the backing store can serve requests
	CheckReadiness(ctx context.Context) error

	// ListTenders returns one page of published tenders and the total match count
	ListTenders(ctx context.Context, opts ...Option[ListTendersOptions]) (*TenderPage, error)

	// GetTender returns a single tender by code
	GetTender(ctx context.Context, opts ...Option[GetTenderOptions]) (*tender.Tender, error)
}

// TenderPage is one page of a tender listing
type TenderPage struct {
	Tenders []tender.Tender `json:"tenders"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// Option is a function that sets an option for ListTendersOptions or GetTenderOptions
type Option[T ListTendersOptions | GetTenderOptions] func(*T) error

// ListTendersOptions is the options for the ListTenders operation
type ListTendersOptions struct {
	Search string
	Region string
	Sort   store.SortOrder
	Limit  int
	Offset int
}

// GetTenderOptions is the options for the GetTender operation
type GetTenderOptions struct {
	Code string
}

// WithSearch filters by free text over name, description and items
func WithSearch(search string) Option[ListTendersOptions] {
	return func(o *ListTendersOptions) error {
		search = strings.TrimSpace(search)
		if search == "" {
			return fmt.Errorf("%w: empty search", ErrInvalidOption)
		}
		o.Search = search
		return nil
	}
}

// WithRegion filters by buyer region
func WithRegion(region string) Option[ListTendersOptions] {
	return func(o *ListTendersOptions) error {
		region = strings.TrimSpace(region)
		if region == "" {
			return fmt.Errorf("%w: empty region", ErrInvalidOption)
		}
		o.Region = region
		return nil
	}
}

// WithSort sets the listing order by name ("close_date" or "publication_date")
func WithSort(sort string) Option[ListTendersOptions] {
	return func(o *ListTendersOptions) error {
		order, err := store.ParseSortOrder(sort)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		o.Sort = order
		return nil
	}
}

// WithLimit sets the page size
func WithLimit(limit int) Option[ListTendersOptions] {
	return func(o *ListTendersOptions) error {
		if limit <= 0 || limit > store.MaxPageSize {
			return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidOption, store.MaxPageSize, limit)
		}
		o.Limit = limit
		return nil
	}
}

// WithOffset sets how many matches to skip
func WithOffset(offset int) Option[ListTendersOptions] {
	return func(o *ListTendersOptions) error {
		if offset < 0 {
			return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidOption, offset)
		}
		o.Offset = offset
		return nil
	}
}

// WithCode selects the tender to get
func WithCode(code string) Option[GetTenderOptions] {
	return func(o *GetTenderOptions) error {
		code = strings.TrimSpace(code)
		if code == "" {
			return fmt.Errorf("%w: empty code", ErrInvalidOption)
		}
		o.Code = code
		return nil
	}
}

// apply runs every option against a zero T
func apply[T ListTendersOptions | GetTenderOptions](opts []Option[T]) (*T, error) {
	out := new(T)
	for _, opt := range opts {
		if err := opt(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
