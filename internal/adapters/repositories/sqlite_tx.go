package repositories

import (
	"context"
	"database/sql"
)

type sqliteTxKey struct{}

func withSqliteTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if sqliteTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, sqliteTxKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func sqliteTxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(sqliteTxKey{}).(*sql.Tx)
	return tx
}
