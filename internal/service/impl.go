package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/sapo-cl/mercadopublico-monitor/internal/otel"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

// ServiceTracerName is the name used for the service tracer
const ServiceTracerName = "github.com/sapo-cl/mercadopublico-monitor/service"

// ImplOption configures the store-backed service
type ImplOption func(*storeService)

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) ImplOption {
	return func(s *storeService) {
		s.tracer = tracer
	}
}

type storeService struct {
	store  store.TenderStore
	tracer trace.Tracer
}

// New returns a TenderService that reads from s
func New(s store.TenderStore, opts ...ImplOption) TenderService {
	svc := &storeService{store: s}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *storeService) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

func (s *storeService) ListTenders(ctx context.Context, opts ...Option[ListTendersOptions]) (*TenderPage, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.ListTenders")
	defer span.End()

	o, err := apply(opts)
	if err != nil {
		return nil, err
	}

	listOpts := store.ListOptions{
		Query:  o.Search,
		Region: o.Region,
		Sort:   o.Sort,
		Limit:  o.Limit,
		Offset: o.Offset,
	}.Normalize()
	span.SetAttributes(otel.AttrPageSize.Int(listOpts.Limit))

	// page and count are independent reads
	var (
		tenders []tender.Tender
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tenders, err = s.store.List(gctx, listOpts)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, listOpts)
		return err
	})
	if err := g.Wait(); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list tenders: %w", err)
	}

	if tenders == nil {
		tenders = []tender.Tender{}
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(tenders)))

	return &TenderPage{
		Tenders: tenders,
		Total:   total,
		Limit:   listOpts.Limit,
		Offset:  listOpts.Offset,
	}, nil
}

func (s *storeService) GetTender(ctx context.Context, opts ...Option[GetTenderOptions]) (*tender.Tender, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.GetTender")
	defer span.End()

	o, err := apply(opts)
	if err != nil {
		return nil, err
	}
	if o.Code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidOption)
	}
	span.SetAttributes(otel.AttrTenderCode.String(o.Code))

	t, err := s.store.Find(ctx, o.Code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTenderNotFound, o.Code)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get tender %s: %w", o.Code, err)
	}
	return t, nil
}
