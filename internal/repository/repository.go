package repository

import (
	"context"
	"errors"
	"fmt"

	"betadmin/internal/apierror"

	"gorm.io/gorm"
)

// RunInTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit tests with in-memory repositories).
// Repository methods taking a tx argument fall back to their own pool on nil.
func RunInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// pick returns tx when a transaction is in flight, db otherwise.
func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// translate maps store errors to the domain taxonomy at the data-access boundary.
// conflict is the error reported on a unique-index violation.
func translate(err error, entity string, conflict error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", entity, apierror.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if conflict == nil {
			conflict = apierror.ErrConflict
		}
		return conflict
	}
	return err
}

// affected turns a zero-row update or delete into a not-found error.
func affected(res *gorm.DB, entity string) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %w", entity, apierror.ErrNotFound)
	}
	return nil
}
