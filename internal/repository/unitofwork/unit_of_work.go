package unitofwork

import (
	"context"

	"highlighter-be/internal/repository/contract"
)

// UnitOfWork hands out repositories that share one connection, or one
// transaction between Begin and Commit/Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	HighlightDocumentRepository() contract.HighlightDocumentRepository
	HighlightAnchorRepository() contract.HighlightAnchorRepository
	HighlightPaletteRepository() contract.HighlightPaletteRepository
}

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// Transaction runs fn inside a fresh unit of work and commits when it
// returns nil. Any error rolls the whole unit back.
func Transaction(ctx context.Context, factory RepositoryFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
