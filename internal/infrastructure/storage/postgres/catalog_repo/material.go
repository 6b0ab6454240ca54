package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fabriq/internal/domain/material"
	"fabriq/internal/infrastructure/storage/postgres"
)

const materialTable = "cat_materials"

// MaterialRepo implements the material catalog repository.
type MaterialRepo struct {
	*BaseCatalogRepo[*material.Material]
}

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txManager *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			materialTable,
			postgres.ExtractDBColumns[material.Material](),
			func() *material.Material { return &material.Material{} },
		),
	}
}

// ListByType retrieves all active materials of one family (PLA, PETG...).
func (r *MaterialRepo) ListByType(ctx context.Context, materialType string) ([]*material.Material, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"type": materialType}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*material.Material
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by type: %w", err)
	}
	return items, nil
}
