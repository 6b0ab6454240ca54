package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fabriq/internal/core/apperror"
	"fabriq/internal/domain/client"
	"fabriq/internal/infrastructure/storage/postgres"
)

const clientTable = "cat_clients"

// ClientRepo implements the client catalog repository.
type ClientRepo struct {
	*BaseCatalogRepo[*client.Client]
}

// NewClientRepo creates a new client repository.
func NewClientRepo(txManager *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			clientTable,
			postgres.ExtractDBColumns[client.Client](),
			func() *client.Client { return &client.Client{} },
		),
	}
}

// GetByName retrieves an active client by exact name.
func (r *ClientRepo) GetByName(ctx context.Context, name string) (*client.Client, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c client.Client
	if err := pgxscan.Get(ctx, r.querier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("client", name)
		}
		return nil, fmt.Errorf("get by name: %w", err)
	}
	return &c, nil
}
