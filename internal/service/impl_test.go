package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/service"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store/inmemory"
	storemocks "github.com/sapo-cl/mercadopublico-monitor/internal/store/mocks"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

func seededService(t *testing.T) service.TenderService {
	t.Helper()

	s := inmemory.New()
	ctx := context.Background()
	base := time.Date(2024, time.May, 10, 15, 0, 0, 0, time.UTC)
	for i, code := range []string{"A", "B", "C"} {
		closeDate := base.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, s.Upsert(ctx, &tender.Tender{
			Code:       code,
			Name:       "Compra de papelería " + code,
			StatusCode: tender.StatusPublished,
			CloseDate:  &closeDate,
			Region:     "Región de Los Lagos",
			Items:      []tender.LineItem{},
		}))
	}
	return service.New(s)
}

func TestListTenders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := seededService(t)

	page, err := svc.ListTenders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, store.DefaultPageSize, page.Limit)
	require.Len(t, page.Tenders, 3)
	assert.Equal(t, "C", page.Tenders[0].Code)

	page, err = svc.ListTenders(ctx, service.WithLimit(1), service.WithOffset(1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Tenders, 1)
	assert.Equal(t, "B", page.Tenders[0].Code)

	page, err = svc.ListTenders(ctx, service.WithSearch("zzz"))
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Tenders)
	assert.Empty(t, page.Tenders)
}

func TestListTenders_InvalidOption(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := service.New(storemocks.NewMockTenderStore(ctrl))

	_, err := svc.ListTenders(context.Background(), service.WithSort("price"))
	require.ErrorIs(t, err, service.ErrInvalidOption)
}

func TestListTenders_StoreError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := storemocks.NewMockTenderStore(ctrl)
	cause := errors.New("connection reset")
	s.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, cause)
	s.EXPECT().Count(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	_, err := service.New(s).ListTenders(context.Background())
	require.ErrorIs(t, err, cause)
}

func TestGetTender(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := seededService(t)

	got, err := svc.GetTender(ctx, service.WithCode("B"))
	require.NoError(t, err)
	assert.Equal(t, "B", got.Code)

	_, err = svc.GetTender(ctx, service.WithCode("missing"))
	require.ErrorIs(t, err, service.ErrTenderNotFound)

	_, err = svc.GetTender(ctx)
	require.ErrorIs(t, err, service.ErrInvalidOption)
}

func TestCheckReadiness(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := storemocks.NewMockTenderStore(ctrl)
	s.EXPECT().Ping(gomock.Any()).Return(nil)
	s.EXPECT().Ping(gomock.Any()).Return(errors.New("pool closed"))

	svc := service.New(s)
	require.NoError(t, svc.CheckReadiness(context.Background()))
	assert.ErrorContains(t, svc.CheckReadiness(context.Background()), "store not ready")
}
