package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type txKey struct{}

// getTx returns the transaction from context if available, otherwise the default DB.
func getTx(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor returns a GORM-backed Transactor. Nested calls join the outer transaction.
func NewTransactor(db *gorm.DB) repository.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	var fnErr error
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(context.WithValue(ctx, txKey{}, tx))
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return apperrors.NewPersistenceError(err)
}

func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.NewPersistenceError(err)
}

func requireOneRow(result *gorm.DB, resource string, details map[string]any) error {
	if result.Error != nil {
		return apperrors.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound(resource, details)
	}
	return nil
}
