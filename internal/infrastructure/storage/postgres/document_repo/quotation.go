// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/domain"
	"fabriq/internal/domain/quotation"
	"fabriq/internal/infrastructure/storage/postgres"
)

const quotationsTable = "doc_quotations"

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// Ensure compile-time interface compliance.
var _ quotation.Repository = (*QuotationRepo)(nil)

// NewQuotationRepo creates a new quotation repository.
func NewQuotationRepo(txManager *postgres.TxManager) *QuotationRepo {
	return &QuotationRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[quotation.Quotation](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *QuotationRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *QuotationRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *QuotationRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(quotationsTable)
}

// Create inserts a new quotation.
func (r *QuotationRepo) Create(ctx context.Context, q *quotation.Quotation) error {
	data := postgres.StructToMap(q)

	insert := r.Builder().
		Insert(quotationsTable).
		SetMap(data)

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("quotation", "number", q.Number)
		}
		return fmt.Errorf("insert quotation: %w", err)
	}

	return nil
}

// GetByID retrieves a quotation by ID.
func (r *QuotationRepo) GetByID(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": quotationID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result quotation.Quotation
	if err := pgxscan.Get(ctx, r.querier(ctx), &result, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quotation", quotationID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &result, nil
}

// GetByNumber retrieves a quotation by document number.
func (r *QuotationRepo) GetByNumber(ctx context.Context, number string) (*quotation.Quotation, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"number": number}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result quotation.Quotation
	if err := pgxscan.Get(ctx, r.querier(ctx), &result, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quotation", number)
		}
		return nil, fmt.Errorf("get by number: %w", err)
	}

	return &result, nil
}

// Update persists changes with optimistic locking. Number and id are
// immutable; version is managed here.
func (r *QuotationRepo) Update(ctx context.Context, q *quotation.Quotation) error {
	data := postgres.StructToMap(q)

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("quotation has no version field")
	}

	filteredData := make(map[string]any, len(data))
	for col, val := range data {
		if col == "id" || col == "number" || col == "version" || col == "updated_at" || col == "created_at" || col == "created_by" {
			continue
		}
		filteredData[col] = val
	}

	update := r.Builder().
		Update(quotationsTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": q.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("quotation", q.ID.String())
	}

	return nil
}

// Delete sets the deletion mark.
func (r *QuotationRepo) Delete(ctx context.Context, quotationID id.ID) error {
	update := r.Builder().
		Update(quotationsTable).
		Set("deletion_mark", true).
		Where(squirrel.Eq{"id": quotationID})

	sql, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("quotation", quotationID.String())
	}

	return nil
}

// List retrieves quotations with filtering and pagination.
func (r *QuotationRepo) List(ctx context.Context, filter quotation.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	result := domain.ListResult[*quotation.Quotation]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"client_name": pattern},
		})
	}

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	// Count before pagination.
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "-date"
	}
	orderClause, err := r.parseOrderBy(orderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderClause)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

func (r *QuotationRepo) parseOrderBy(orderBy string) (string, error) {
	direction := "ASC"
	col := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		col = orderBy[1:]
	}

	for _, valid := range r.selectCols {
		if col == valid {
			return col + " " + direction, nil
		}
	}
	return "", fmt.Errorf("invalid order column: %s", col)
}

// isUniqueViolation checks for PostgreSQL error 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
