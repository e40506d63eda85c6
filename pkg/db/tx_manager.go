package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// TxManager открывает транзакцию на мастере и отдаёт её в fn.
type TxManager interface {
	RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx Transaction) error) error
}

// Transaction: то, что журнал делает внутри транзакции. pgx.Tx подходит как есть.
type Transaction interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ExecOne выполняет один statement в своей транзакции и возвращает число затронутых строк.
func ExecOne(ctx context.Context, tm TxManager, sql string, args ...any) (int64, error) {
	var affected int64
	err := tm.RunMaster(ctx, func(ctxTx context.Context, tx Transaction) error {
		tag, err := tx.Exec(ctxTx, sql, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	return affected, nil
}
