// Package inmemory provides a map-backed TenderStore for development and tests
package inmemory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

// memStore implements store.TenderStore. Records are deep-copied on the way in
// and out so callers never share memory with the map.
type memStore struct {
	mu      sync.RWMutex // Protects tenders
	tenders map[string]*tender.Tender
}

var _ store.TenderStore = (*memStore)(nil)

// New creates an empty in-memory store
func New() store.TenderStore {
	return &memStore{tenders: make(map[string]*tender.Tender)}
}

func (s *memStore) Upsert(_ context.Context, t *tender.Tender) error {
	if t == nil || t.Code == "" {
		return fmt.Errorf("tender code is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := t.Clone()
	if c.Items == nil {
		c.Items = []tender.LineItem{}
	}
	if existing, ok := s.tenders[t.Code]; ok && !existing.CreatedAt.IsZero() {
		c.CreatedAt = existing.CreatedAt
	}
	s.tenders[t.Code] = c
	return nil
}

func (s *memStore) Update(_ context.Context, t *tender.Tender) error {
	if t == nil || t.Code == "" {
		return fmt.Errorf("tender code is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tenders[t.Code]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, t.Code)
	}
	c := t.Clone()
	if c.Items == nil {
		c.Items = []tender.LineItem{}
	}
	c.CreatedAt = existing.CreatedAt
	s.tenders[t.Code] = c
	return nil
}

func (s *memStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tenders[code]
	return ok, nil
}

func (s *memStore) Find(_ context.Context, code string) (*tender.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenders[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, code)
	}
	return t.Clone(), nil
}

func (s *memStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tenders, code)
	return nil
}

func (s *memStore) DeleteClosedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for code, t := range s.tenders {
		if t.CloseDate != nil && t.CloseDate.Before(cutoff) {
			delete(s.tenders, code)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memStore) List(_ context.Context, opts store.ListOptions) ([]tender.Tender, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	matches := s.match(opts)
	s.mu.RUnlock()

	slices.SortFunc(matches, compareFor(opts.Sort))

	if opts.Offset >= len(matches) {
		return []tender.Tender{}, nil
	}
	end := min(opts.Offset+opts.Limit, len(matches))
	return matches[opts.Offset:end], nil
}

func (s *memStore) Count(_ context.Context, opts store.ListOptions) (int64, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.match(opts))), nil
}

func (*memStore) Ping(context.Context) error {
	return nil
}

// match returns copies of the published tenders selected by opts.
// Callers must hold at least the read lock.
func (s *memStore) match(opts store.ListOptions) []tender.Tender {
	query := store.Fold(opts.Query)
	region := strings.ToLower(opts.Region)

	out := make([]tender.Tender, 0)
	for _, t := range s.tenders {
		if !t.IsPublished() {
			continue
		}
		if region != "" && !strings.Contains(strings.ToLower(t.Region), region) {
			continue
		}
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		out = append(out, *t.Clone())
	}
	return out
}

func matchesQuery(t *tender.Tender, folded string) bool {
	if strings.Contains(store.Fold(t.Name), folded) || strings.Contains(store.Fold(t.Description), folded) {
		return true
	}
	for _, it := range t.Items {
		if strings.Contains(store.Fold(it.Description), folded) || strings.Contains(store.Fold(it.ProductName), folded) {
			return true
		}
	}
	return false
}

// compareFor orders newest first, missing dates last, ties by code
func compareFor(order store.SortOrder) func(a, b tender.Tender) int {
	key := func(t tender.Tender) *time.Time { return t.CloseDate }
	if order == store.SortByPublicationDate {
		key = func(t tender.Tender) *time.Time { return t.PublicationDate }
	}
	return func(a, b tender.Tender) int {
		ka, kb := key(a), key(b)
		switch {
		case ka == nil && kb == nil:
		case ka == nil:
			return 1
		case kb == nil:
			return -1
		default:
			if c := kb.Compare(*ka); c != 0 {
				return c
			}
		}
		return strings.Compare(a.Code, b.Code)
	}
}
