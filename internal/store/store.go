// Package store defines the persistence contract for tenders.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

var (
	// ErrNotFound is returned by Find when no tender has the requested code
	ErrNotFound = errors.New("tender not found")
	// ErrInvalidSort is returned when a sort order cannot be parsed
	ErrInvalidSort = errors.New("invalid sort order")
)

const (
	// DefaultPageSize is the listing page size when none is requested
	DefaultPageSize = 50
	// MaxPageSize caps the listing page size
	MaxPageSize = 500
)

// SortOrder selects the listing order. Both orders are newest first with ties
// broken by code.
type SortOrder string

const (
	// SortByCloseDate orders by close date
	SortByCloseDate SortOrder = "close_date"
	// SortByPublicationDate orders by publication date
	SortByPublicationDate SortOrder = "publication_date"
)

// ParseSortOrder parses s, defaulting to SortByCloseDate when empty
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByCloseDate:
		return SortByCloseDate, nil
	case SortByPublicationDate:
		return SortByPublicationDate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// ListOptions narrows a listing of published tenders
type ListOptions struct {
	// Query matches name, description, item description or item product name,
	// ignoring case and accents
	Query string
	// Region is a case-insensitive substring of the region
	Region string
	Sort   SortOrder
	Limit  int
	Offset int
}

// Normalize fills defaults and clamps paging values
func (o ListOptions) Normalize() ListOptions {
	o.Query = strings.TrimSpace(o.Query)
	o.Region = strings.TrimSpace(o.Region)
	if o.Sort == "" {
		o.Sort = SortByCloseDate
	}
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// TenderStore persists tenders keyed by external code.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/sapo-cl/mercadopublico-monitor/internal/store TenderStore
type TenderStore interface {
	// Upsert inserts t or replaces the stored record with the same code,
	// including its items. The CreatedAt of an existing record is kept.
	Upsert(ctx context.Context, t *tender.Tender) error

	// Update replaces an existing record and its items. It never inserts and
	// returns ErrNotFound when no tender with t.Code is stored.
	Update(ctx context.Context, t *tender.Tender) error

	// Exists reports whether a tender with code is stored
	Exists(ctx context.Context, code string) (bool, error)

	// Find returns the stored tender or ErrNotFound
	Find(ctx context.Context, code string) (*tender.Tender, error)

	// Delete removes the tender and its items. Deleting a missing code is a no-op.
	Delete(ctx context.Context, code string) error

	// DeleteClosedBefore removes every tender whose close date is before cutoff
	// and returns how many were removed
	DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// List returns a page of published tenders
	List(ctx context.Context, opts ListOptions) ([]tender.Tender, error)

	// Count returns the number of published tenders matching opts, ignoring paging
	Count(ctx context.Context, opts ListOptions) (int64, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}
