// Package database provides a PostgreSQL implementation of store.TenderStore
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/sapo-cl/mercadopublico-monitor/internal/otel"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

const tenderColumns = `external_code, name, description, status_code, close_date, publication_date,
	region, buyer_name, buyer_rut, created_at, updated_at`

const upsertTenderSQL = `
INSERT INTO tenders (` + tenderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($11, NOW()))
ON CONFLICT (external_code) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	status_code = EXCLUDED.status_code,
	close_date = EXCLUDED.close_date,
	publication_date = EXCLUDED.publication_date,
	region = EXCLUDED.region,
	buyer_name = EXCLUDED.buyer_name,
	buyer_rut = EXCLUDED.buyer_rut,
	updated_at = EXCLUDED.updated_at`

const updateTenderSQL = `
UPDATE tenders SET
	name = $2,
	description = $3,
	status_code = $4,
	close_date = $5,
	publication_date = $6,
	region = $7,
	buyer_name = $8,
	buyer_rut = $9,
	updated_at = COALESCE($10, NOW())
WHERE external_code = $1`

const insertItemSQL = `
INSERT INTO tender_items (tender_code, position, product_code, product_name, description, quantity, unit_of_measure)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectItemsSQL = `
SELECT tender_code, product_code, product_name, description, quantity, unit_of_measure
FROM tender_items
WHERE tender_code = ANY($1)
ORDER BY tender_code, position`

const listColumns = `t.external_code, t.name, t.description, t.status_code, t.close_date, t.publication_date,
	t.region, t.buyer_name, t.buyer_rut, t.created_at, t.updated_at`

// listFilterSQL restricts to published tenders. $1 is the search text and $2
// the region; either may be empty.
var listFilterSQL = `
FROM tenders t
WHERE t.status_code = ` + strconv.Itoa(tender.StatusPublished) + `
	AND ($1::text = '' OR
		strpos(lower(unaccent(t.name)), lower(unaccent($1::text))) > 0 OR
		strpos(lower(unaccent(t.description)), lower(unaccent($1::text))) > 0 OR
		EXISTS (
			SELECT 1 FROM tender_items i
			WHERE i.tender_code = t.external_code AND (
				strpos(lower(unaccent(i.description)), lower(unaccent($1::text))) > 0 OR
				strpos(lower(unaccent(i.product_name)), lower(unaccent($1::text))) > 0)))
	AND ($2::text = '' OR strpos(lower(t.region), lower($2::text)) > 0)`

// options holds configuration options for the PostgreSQL store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the PostgreSQL store
type Option func(*options) error

// WithConnectionPool sets the pgx pool. The caller is responsible for closing
// the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// pgStore implements store.TenderStore on PostgreSQL
type pgStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ store.TenderStore = (*pgStore)(nil)

// New creates a PostgreSQL-backed tender store
func New(opts ...Option) (store.TenderStore, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &pgStore{pool: o.pool, tracer: o.tracer}, nil
}

// Upsert writes the tender row and replaces its items in one transaction
func (s *pgStore) Upsert(ctx context.Context, t *tender.Tender) (err error) {
	if t == nil || t.Code == "" {
		return fmt.Errorf("tender code is required")
	}

	ctx, span := s.startSpan(ctx, "pgStore.Upsert",
		trace.WithAttributes(otel.AttrTenderCode.String(t.Code), otel.AttrItemCount.Int(len(t.Items))))
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if _, err = tx.Exec(ctx, upsertTenderSQL,
		t.Code, t.Name, t.Description, t.StatusCode, t.CloseDate, t.PublicationDate,
		t.Region, t.BuyerName, t.BuyerRut, nonZero(t.CreatedAt), nonZero(t.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to upsert tender %s: %w", t.Code, err)
	}

	if err = replaceItems(ctx, tx, t); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tender %s: %w", t.Code, err)
	}
	return nil
}

// Update rewrites an existing tender row and its items. A missing row is left
// absent and reported as store.ErrNotFound.
func (s *pgStore) Update(ctx context.Context, t *tender.Tender) (err error) {
	if t == nil || t.Code == "" {
		return fmt.Errorf("tender code is required")
	}

	ctx, span := s.startSpan(ctx, "pgStore.Update",
		trace.WithAttributes(otel.AttrTenderCode.String(t.Code), otel.AttrItemCount.Int(len(t.Items))))
	defer func() {
		if !errors.Is(err, store.ErrNotFound) {
			otel.RecordError(span, err)
		}
		span.End()
	}()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	tag, err := tx.Exec(ctx, updateTenderSQL,
		t.Code, t.Name, t.Description, t.StatusCode, t.CloseDate, t.PublicationDate,
		t.Region, t.BuyerName, t.BuyerRut, nonZero(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update tender %s: %w", t.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, t.Code)
	}

	if err = replaceItems(ctx, tx, t); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tender %s: %w", t.Code, err)
	}
	return nil
}

// replaceItems swaps the stored items of t for t.Items inside tx
func replaceItems(ctx context.Context, tx pgx.Tx, t *tender.Tender) error {
	if _, err := tx.Exec(ctx, `DELETE FROM tender_items WHERE tender_code = $1`, t.Code); err != nil {
		return fmt.Errorf("failed to clear items of tender %s: %w", t.Code, err)
	}

	if len(t.Items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, it := range t.Items {
		batch.Queue(insertItemSQL, t.Code, i, it.ProductCode, it.ProductName, it.Description, it.Quantity, it.UnitOfMeasure)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert items of tender %s: %w", t.Code, err)
	}
	return nil
}

func (s *pgStore) Exists(ctx context.Context, code string) (bool, error) {
	ctx, span := s.startSpan(ctx, "pgStore.Exists", trace.WithAttributes(otel.AttrTenderCode.String(code)))
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenders WHERE external_code = $1)`, code).Scan(&exists)
	if err != nil {
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to check tender %s: %w", code, err)
	}
	return exists, nil
}

func (s *pgStore) Find(ctx context.Context, code string) (*tender.Tender, error) {
	ctx, span := s.startSpan(ctx, "pgStore.Find", trace.WithAttributes(otel.AttrTenderCode.String(code)))
	defer span.End()

	row := s.pool.QueryRow(ctx, `SELECT `+tenderColumns+` FROM tenders WHERE external_code = $1`, code)
	t, err := scanTender(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, code)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to find tender %s: %w", code, err)
	}

	tenders := []tender.Tender{*t}
	if err := s.loadItems(ctx, tenders); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return &tenders[0], nil
}

func (s *pgStore) Delete(ctx context.Context, code string) error {
	ctx, span := s.startSpan(ctx, "pgStore.Delete", trace.WithAttributes(otel.AttrTenderCode.String(code)))
	defer span.End()

	// items go with the tender through ON DELETE CASCADE
	if _, err := s.pool.Exec(ctx, `DELETE FROM tenders WHERE external_code = $1`, code); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete tender %s: %w", code, err)
	}
	return nil
}

func (s *pgStore) DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := s.startSpan(ctx, "pgStore.DeleteClosedBefore")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tenders WHERE close_date < $1`, cutoff)
	if err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to delete expired tenders: %w", err)
	}
	span.SetAttributes(AttrRowsDeleted.Int64(tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

func (s *pgStore) List(ctx context.Context, opts store.ListOptions) ([]tender.Tender, error) {
	ctx, span := s.startSpan(ctx, "pgStore.List")
	defer span.End()

	opts = opts.Normalize()
	span.SetAttributes(otel.AttrPageSize.Int(opts.Limit))

	query := `SELECT ` + listColumns + listFilterSQL +
		` ORDER BY ` + orderBy(opts.Sort) + ` LIMIT $3 OFFSET $4`

	rows, err := s.pool.Query(ctx, query, opts.Query, opts.Region, opts.Limit, opts.Offset)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list tenders: %w", err)
	}
	tenders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tender.Tender, error) {
		t, err := scanTender(row)
		if err != nil {
			return tender.Tender{}, err
		}
		return *t, nil
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read tenders: %w", err)
	}

	if err := s.loadItems(ctx, tenders); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(tenders)))
	return tenders, nil
}

func (s *pgStore) Count(ctx context.Context, opts store.ListOptions) (int64, error) {
	ctx, span := s.startSpan(ctx, "pgStore.Count")
	defer span.End()

	opts = opts.Normalize()

	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) `+listFilterSQL, opts.Query, opts.Region).Scan(&n); err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to count tenders: %w", err)
	}
	return n, nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// loadItems fills the Items of every tender in place
func (s *pgStore) loadItems(ctx context.Context, tenders []tender.Tender) error {
	if len(tenders) == 0 {
		return nil
	}

	index := make(map[string]int, len(tenders))
	codes := make([]string, 0, len(tenders))
	for i := range tenders {
		tenders[i].Items = []tender.LineItem{}
		index[tenders[i].Code] = i
		codes = append(codes, tenders[i].Code)
	}

	rows, err := s.pool.Query(ctx, selectItemsSQL, codes)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code string
			it   tender.LineItem
		)
		if err := rows.Scan(&code, &it.ProductCode, &it.ProductName, &it.Description, &it.Quantity, &it.UnitOfMeasure); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		if i, ok := index[code]; ok {
			tenders[i].Items = append(tenders[i].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}
	return nil
}

func scanTender(row pgx.Row) (*tender.Tender, error) {
	var t tender.Tender
	err := row.Scan(
		&t.Code, &t.Name, &t.Description, &t.StatusCode, &t.CloseDate, &t.PublicationDate,
		&t.Region, &t.BuyerName, &t.BuyerRut, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func orderBy(sort store.SortOrder) string {
	if sort == store.SortByPublicationDate {
		return `t.publication_date DESC NULLS LAST, t.external_code`
	}
	return `t.close_date DESC NULLS LAST, t.external_code`
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.ErrorContext(ctx, "Failed to roll back transaction", "error", err)
	}
}
