package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

var base = time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

func TestUpsert_KeepsCreatedAtAndReplacesItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Upsert(ctx, &tender.Tender{
		Code:       "A",
		Name:       "first",
		StatusCode: tender.StatusPublished,
		Items:      []tender.LineItem{{ProductName: "a"}, {ProductName: "b"}},
		CreatedAt:  base,
		UpdatedAt:  base,
	}))
	require.NoError(t, s.Upsert(ctx, &tender.Tender{
		Code:       "A",
		Name:       "second",
		StatusCode: tender.StatusPublished,
		Items:      []tender.LineItem{{ProductName: "c"}},
		CreatedAt:  base.Add(time.Hour),
		UpdatedAt:  base.Add(time.Hour),
	}))

	got, err := s.Find(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), got.UpdatedAt)
	assert.Equal(t, []tender.LineItem{{ProductName: "c"}}, got.Items)
}

func TestUpsert_RequiresCode(t *testing.T) {
	t.Parallel()

	assert.Error(t, New().Upsert(context.Background(), &tender.Tender{}))
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	err := s.Update(ctx, &tender.Tender{Code: "missing", Items: []tender.LineItem{{ProductName: "a"}}})
	require.ErrorIs(t, err, store.ErrNotFound)
	ok, err := s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "update must not insert")

	require.NoError(t, s.Upsert(ctx, &tender.Tender{Code: "A", Name: "first", CreatedAt: base, UpdatedAt: base}))
	require.NoError(t, s.Update(ctx, &tender.Tender{
		Code:      "A",
		Name:      "second",
		Items:     []tender.LineItem{{ProductName: "b"}},
		CreatedAt: base.Add(time.Hour),
		UpdatedAt: base.Add(time.Hour),
	}))

	got, err := s.Find(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), got.UpdatedAt)
	assert.Equal(t, []tender.LineItem{{ProductName: "b"}}, got.Items)

	assert.Error(t, s.Update(ctx, &tender.Tender{}))
}

func TestFind_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	original := &tender.Tender{Code: "A", Items: []tender.LineItem{{ProductName: "a"}}}
	require.NoError(t, s.Upsert(ctx, original))
	original.Items[0].ProductName = "mutated"

	got, err := s.Find(ctx, "A")
	require.NoError(t, err)
	got.Name = "also mutated"

	again, err := s.Find(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Items[0].ProductName)
	assert.Empty(t, again.Name)
}

func TestFindExistsDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	_, err := s.Find(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Upsert(ctx, &tender.Tender{Code: "A"}))
	ok, err := s.Exists(ctx, "A")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "A"))
	require.NoError(t, s.Delete(ctx, "A"), "deleting a missing code is a no-op")

	ok, err = s.Exists(ctx, "A")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteClosedBefore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Upsert(ctx, &tender.Tender{Code: "old", CloseDate: at(-48 * time.Hour)}))
	require.NoError(t, s.Upsert(ctx, &tender.Tender{Code: "older", CloseDate: at(-96 * time.Hour)}))
	require.NoError(t, s.Upsert(ctx, &tender.Tender{Code: "open", CloseDate: at(48 * time.Hour)}))
	require.NoError(t, s.Upsert(ctx, &tender.Tender{Code: "undated"}))

	deleted, err := s.DeleteClosedBefore(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	for code, want := range map[string]bool{"old": false, "older": false, "open": true, "undated": true} {
		ok, err := s.Exists(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, want, ok, code)
	}

	deleted, err = s.DeleteClosedBefore(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func seed(t *testing.T, s store.TenderStore) {
	t.Helper()
	ctx := context.Background()
	records := []*tender.Tender{
		{Code: "A", Name: "Adquisición de agua", StatusCode: 5, Region: "Región de Valparaíso", CloseDate: at(24 * time.Hour), PublicationDate: at(-72 * time.Hour)},
		{Code: "B", Name: "Servicio de aseo", StatusCode: 5, Region: "Región Metropolitana", CloseDate: at(72 * time.Hour), PublicationDate: at(-24 * time.Hour),
			Items: []tender.LineItem{{ProductName: "Detergente", Description: "Limpieza de oficinas"}}},
		{Code: "C", Name: "Compra de papel", StatusCode: 5, Region: "Región Metropolitana", CloseDate: at(72 * time.Hour)},
		{Code: "D", Name: "Agua embotellada", StatusCode: 6, Region: "Región Metropolitana", CloseDate: at(96 * time.Hour)},
		{Code: "E", Name: "Sin fecha", StatusCode: 5},
	}
	for _, r := range records {
		require.NoError(t, s.Upsert(ctx, r))
	}
}

func codes(ts []tender.Tender) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Code)
	}
	return out
}

func TestListAndCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts store.ListOptions
		want []string
	}{
		{name: "default order is close date newest first", opts: store.ListOptions{}, want: []string{"B", "C", "A", "E"}},
		{name: "publication date order", opts: store.ListOptions{Sort: store.SortByPublicationDate}, want: []string{"B", "A", "C", "E"}},
		{name: "accent insensitive query", opts: store.ListOptions{Query: "ADQUISICION"}, want: []string{"A"}},
		{name: "query matches items", opts: store.ListOptions{Query: "limpieza"}, want: []string{"B"}},
		{name: "query skips unpublished", opts: store.ListOptions{Query: "agua"}, want: []string{"A"}},
		{name: "region substring", opts: store.ListOptions{Region: "metropolitana"}, want: []string{"B", "C"}},
		{name: "paging", opts: store.ListOptions{Limit: 2, Offset: 1}, want: []string{"C", "A"}},
		{name: "offset past end", opts: store.ListOptions{Offset: 10}, want: []string{}},
	}

	s := New()
	seed(t, s)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			got, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(got))
		})
	}
}

func TestCount_IgnoresPaging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	seed(t, s)

	n, err := s.Count(ctx, store.ListOptions{Region: "metropolitana", Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
