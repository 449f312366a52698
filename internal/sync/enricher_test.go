package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	mpmocks "github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico/mocks"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store/inmemory"
	storemocks "github.com/sapo-cl/mercadopublico-monitor/internal/store/mocks"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

func newTestEnricher(client mercadopublico.Client, s store.TenderStore, clk clock.Clock, delay time.Duration) *Enricher {
	return NewEnricher(client, s, clk, WithEnricherDelay(delay))
}

// deleteAfterFindStore removes a record right after handing it out, the way a
// concurrent Phase 1 delete would between the read and the write of a merge.
type deleteAfterFindStore struct {
	store.TenderStore
}

func (s deleteAfterFindStore) Find(ctx context.Context, code string) (*tender.Tender, error) {
	t, err := s.TenderStore.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.TenderStore.Delete(ctx, code); err != nil {
		return nil, err
	}
	return t, nil
}

func seedStore(t *testing.T, s store.TenderStore, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, s.Upsert(context.Background(), &tender.Tender{
			Code:       code,
			Name:       "Licitación " + code,
			StatusCode: tender.StatusPublished,
			Items:      []tender.LineItem{},
			CreatedAt:  testNow,
			UpdatedAt:  testNow,
		}))
	}
}

func TestEnrich_ReplacesItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	s := inmemory.New()
	require.NoError(t, s.Upsert(ctx, &tender.Tender{
		Code:        "E1",
		StatusCode:  tender.StatusPublished,
		Description: "resumen",
		Items:       []tender.LineItem{{ProductName: "viejo"}},
	}))

	client.EXPECT().FetchDetail(gomock.Any(), "E1").Return(detail("E1", "Guantes", "Mascarillas"), nil)

	clk := clocktesting.NewFakeClock(testNow)
	report := newTestEnricher(client, s, clk, 0).Enrich(ctx, []mercadopublico.Tender{summary("E1", 5, time.Hour)})

	assert.Equal(t, BatchReport{Total: 1, Succeeded: 1}, report)

	got, err := s.Find(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Guantes", got.Items[0].ProductName)
	assert.Equal(t, "Mascarillas", got.Items[1].ProductName)
	assert.Equal(t, "Hospital Regional", got.BuyerName)
	assert.Equal(t, "61.602.123-0", got.BuyerRut)
	assert.Equal(t, "Región de Los Lagos", got.Region)
	assert.Equal(t, "Descripción completa de E1", got.Description)
}

func TestEnrich_FailuresAndMissingRecordsDoNotAbort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	s := inmemory.New()
	seedStore(t, s, "A", "C")

	gomock.InOrder(
		client.EXPECT().FetchDetail(gomock.Any(), "A").
			Return(nil, &mercadopublico.Failure{Kind: mercadopublico.FailureHTTP, StatusCode: 500}),
		client.EXPECT().FetchDetail(gomock.Any(), "B").Return(detail("B", "x"), nil),
		client.EXPECT().FetchDetail(gomock.Any(), "C").Return(detail("C", "y"), nil),
	)

	batch := []mercadopublico.Tender{summary("A", 5, time.Hour), summary("B", 5, time.Hour), summary("C", 5, time.Hour)}
	report := newTestEnricher(client, s, clocktesting.NewFakeClock(testNow), 0).Enrich(ctx, batch)

	assert.Equal(t, BatchReport{Total: 3, Succeeded: 1, Failed: 1, Skipped: 1}, report)
	assert.Equal(t, 3, report.Processed())

	ok, err := s.Exists(ctx, "B")
	require.NoError(t, err)
	assert.False(t, ok, "a vanished record must not be recreated")

	a, err := s.Find(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, a.Items)
}

func TestEnrich_SkipsTenderDeletedDuringMerge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	mem := inmemory.New()
	seedStore(t, mem, "X")

	client.EXPECT().FetchDetail(gomock.Any(), "X").Return(detail("X", "Guantes"), nil)

	report := newTestEnricher(client, deleteAfterFindStore{mem}, clocktesting.NewFakeClock(testNow), 0).
		Enrich(ctx, []mercadopublico.Tender{summary("X", 5, time.Hour)})

	assert.Equal(t, BatchReport{Total: 1, Skipped: 1}, report)

	ok, err := mem.Exists(ctx, "X")
	require.NoError(t, err)
	assert.False(t, ok, "a record deleted mid-merge must not be recreated")
}

func TestEnrich_StoreUpdateFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	s := storemocks.NewMockTenderStore(ctrl)

	client.EXPECT().FetchDetail(gomock.Any(), "E1").Return(detail("E1", "Guantes"), nil)
	s.EXPECT().Find(gomock.Any(), "E1").Return(&tender.Tender{Code: "E1", StatusCode: tender.StatusPublished}, nil)
	s.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	report := newTestEnricher(client, s, clocktesting.NewFakeClock(testNow), 0).
		Enrich(ctx, []mercadopublico.Tender{summary("E1", 5, time.Hour)})

	assert.Equal(t, BatchReport{Total: 1, Failed: 1}, report)
}

func TestNewEnricher_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		opts          []EnricherOption
		wantDelay     time.Duration
		wantProgress  int
		wantRecordTTL time.Duration
	}{
		{
			name:          "defaults",
			wantDelay:     DefaultDetailDelay,
			wantProgress:  DefaultProgressEvery,
			wantRecordTTL: DefaultRecordTimeout,
		},
		{
			name: "overrides",
			opts: []EnricherOption{
				WithEnricherDelay(500 * time.Millisecond),
				WithEnricherProgressEvery(10),
				WithEnricherRecordTimeout(time.Minute),
			},
			wantDelay:     500 * time.Millisecond,
			wantProgress:  10,
			wantRecordTTL: time.Minute,
		},
		{
			name:          "non-positive record timeout keeps the default",
			opts:          []EnricherOption{WithEnricherRecordTimeout(0), WithEnricherDelay(0)},
			wantDelay:     0,
			wantProgress:  DefaultProgressEvery,
			wantRecordTTL: DefaultRecordTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEnricher(nil, inmemory.New(), nil, tt.opts...)
			assert.Equal(t, tt.wantDelay, e.delay)
			assert.Equal(t, tt.wantProgress, e.progressEvery)
			assert.Equal(t, tt.wantRecordTTL, e.recordTimeout)
			assert.NotNil(t, e.clock)
			assert.Nil(t, e.tracer)
		})
	}
}

func TestEnrich_PacesBetweenRecordsOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	s := inmemory.New()
	seedStore(t, s, "A", "B", "C")

	client.EXPECT().FetchDetail(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, code string) (*mercadopublico.Tender, error) {
			return detail(code, "item"), nil
		}).Times(3)

	clk := clocktesting.NewFakeClock(testNow)
	e := newTestEnricher(client, s, clk, 3*time.Second)

	done := make(chan BatchReport, 1)
	go func() {
		done <- e.Enrich(ctx, []mercadopublico.Tender{
			summary("A", 5, time.Hour), summary("B", 5, time.Hour), summary("C", 5, time.Hour),
		})
	}()

	for range 2 {
		require.Eventually(t, clk.HasWaiters, 5*time.Second, time.Millisecond)
		clk.Step(3 * time.Second)
	}

	select {
	case report := <-done:
		assert.Equal(t, BatchReport{Total: 3, Succeeded: 3}, report)
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment did not finish")
	}
	assert.False(t, clk.HasWaiters(), "no pause after the last record")
}

func TestEnrich_CancelDuringPause(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	s := inmemory.New()
	seedStore(t, s, "A", "B", "C")

	client.EXPECT().FetchDetail(gomock.Any(), "A").Return(detail("A", "item"), nil)

	clk := clocktesting.NewFakeClock(testNow)
	e := newTestEnricher(client, s, clk, 3*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan BatchReport, 1)
	go func() {
		done <- e.Enrich(ctx, []mercadopublico.Tender{
			summary("A", 5, time.Hour), summary("B", 5, time.Hour), summary("C", 5, time.Hour),
		})
	}()

	require.Eventually(t, clk.HasWaiters, 5*time.Second, time.Millisecond)
	cancel()

	select {
	case report := <-done:
		assert.Equal(t, BatchReport{Total: 3, Succeeded: 1, Cancelled: true, Remaining: 2}, report)
	case <-time.After(5 * time.Second):
		t.Fatal("cancellation did not interrupt the pause")
	}

	b, err := s.Find(context.Background(), "B")
	require.NoError(t, err)
	assert.Empty(t, b.Items, "remaining records stay un-enriched")
}

func TestEnrich_InFlightRecordCompletes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)
	s := inmemory.New()
	seedStore(t, s, "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.EXPECT().FetchDetail(gomock.Any(), "A").
		DoAndReturn(func(reqCtx context.Context, code string) (*mercadopublico.Tender, error) {
			cancel()
			assert.NoError(t, reqCtx.Err(), "in-flight record must not see the cancellation")
			return detail(code, "item"), nil
		})

	report := newTestEnricher(client, s, clocktesting.NewFakeClock(testNow), 3*time.Second).
		Enrich(ctx, []mercadopublico.Tender{summary("A", 5, time.Hour), summary("B", 5, time.Hour)})

	assert.Equal(t, BatchReport{Total: 2, Succeeded: 1, Cancelled: true, Remaining: 1}, report)

	a, err := s.Find(context.Background(), "A")
	require.NoError(t, err)
	assert.Len(t, a.Items, 1)
}

func TestEnrich_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mpmocks.NewMockClient(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := newTestEnricher(client, inmemory.New(), clocktesting.NewFakeClock(testNow), 0).
		Enrich(ctx, []mercadopublico.Tender{summary("A", 5, time.Hour)})

	assert.Equal(t, BatchReport{Total: 1, Cancelled: true, Remaining: 1}, report)
}

func TestEnrich_Empty(t *testing.T) {
	t.Parallel()

	report := newTestEnricher(nil, inmemory.New(), clocktesting.NewFakeClock(testNow), 0).
		Enrich(context.Background(), nil)

	assert.Equal(t, BatchReport{}, report)
}
