package strata

import (
	"context"
	"fmt"

	"github.com/syssam/strata/dialect"
)

// WithTx runs fn in a transaction. The transaction is committed if fn
// returns nil and rolled back otherwise, including when fn panics.
func WithTx(ctx context.Context, drv dialect.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("strata: starting a transaction: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return &RollbackError{Err: err, Rollback: rerr}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("strata: committing transaction: %w", err)
	}
	return nil
}
