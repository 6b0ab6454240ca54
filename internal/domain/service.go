package domain

import (
	"context"
	"fmt"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
	"fabriq/internal/core/tx"
	"fabriq/pkg/logger"
)

// CatalogService provides generic business logic for catalog entities.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]
	name      string
}

// NewCatalogService creates a generic catalog service.
func NewCatalogService[T entity.Validatable](
	name string,
	repo CatalogRepository[T],
	txManager tx.Manager,
) *CatalogService[T] {
	return &CatalogService[T]{
		repo:      repo,
		txManager: txManager,
		hooks:     NewHookRegistry[T](),
		name:      name,
	}
}

// Hooks exposes the registry so callers can attach lifecycle hooks.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Create validates and persists a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, ent T) error {
	if err := s.hooks.RunBeforeCreate(ctx, ent); err != nil {
		return err
	}

	if err := ent.Validate(ctx); err != nil {
		return apperror.NewValidation(fmt.Sprintf("%s validation failed", s.name)).WithCause(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, ent)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, ent); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.name, "error", err)
	}

	logger.Info(ctx, "catalog entity created", "entity", s.name)
	return nil
}

// GetByID retrieves an entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return s.repo.GetByID(ctx, entityID)
}

// Update validates and persists changes to an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, ent T) error {
	if err := s.hooks.RunBeforeUpdate(ctx, ent); err != nil {
		return err
	}

	if err := ent.Validate(ctx); err != nil {
		return apperror.NewValidation(fmt.Sprintf("%s validation failed", s.name)).WithCause(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, ent)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, ent); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.name, "error", err)
	}

	return nil
}

// SetDeletionMark marks or unmarks an entity for deletion.
func (s *CatalogService[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.SetDeletionMark(txCtx, entityID, marked)
	})
}

// List retrieves entities with filtering and pagination.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}
