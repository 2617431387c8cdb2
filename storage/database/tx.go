package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
)

// WithTx runs fn in a transaction, committed if fn succeeds and rolled back otherwise.
func WithTx(ctx context.Context, db core.DB, fn func(tx core.DBTransactor) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Wrapf(err, "rollback failed: %v", rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			err = errors.Wrap(err, "committing transaction")
		}
	}()

	return fn(tx)
}
