package unitofwork

import (
	"context"
	"errors"

	"highlighter-be/internal/repository/contract"
	"highlighter-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTxStarted = errors.New("transaction already started")
	ErrNoTx      = errors.New("no transaction in progress")
)

type gormFactory struct {
	db *gorm.DB
}

// NewRepositoryFactory builds units of work over a shared connection pool.
func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormFactory{db: db}
}

// NewUnitOfWork binds reads outside a transaction to ctx. Begin binds its
// own context.
func (f *gormFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &gormUnitOfWork{db: f.db.WithContext(ctx)}
}

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxStarted
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	return u.finish((*gorm.DB).Commit)
}

func (u *gormUnitOfWork) Rollback() error {
	return u.finish((*gorm.DB).Rollback)
}

func (u *gormUnitOfWork) finish(end func(*gorm.DB) *gorm.DB) error {
	if u.tx == nil {
		return ErrNoTx
	}
	tx := u.tx
	u.tx = nil
	return end(tx).Error
}

func (u *gormUnitOfWork) HighlightDocumentRepository() contract.HighlightDocumentRepository {
	return implementation.NewHighlightDocumentRepository(u.conn())
}

func (u *gormUnitOfWork) HighlightAnchorRepository() contract.HighlightAnchorRepository {
	return implementation.NewHighlightAnchorRepository(u.conn())
}

func (u *gormUnitOfWork) HighlightPaletteRepository() contract.HighlightPaletteRepository {
	return implementation.NewHighlightPaletteRepository(u.conn())
}
