package notify

import (
	"context"
	"fmt"
	"strings"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

const signalsSchema = `
CREATE TABLE IF NOT EXISTS signals (
	id           BIGSERIAL PRIMARY KEY,
	symbol       TEXT NOT NULL,
	side         TEXT NOT NULL,
	price        DOUBLE PRECISION NOT NULL,
	stop_loss    DOUBLE PRECISION NOT NULL,
	take_profit  DOUBLE PRECISION NOT NULL,
	quantity     DOUBLE PRECISION NOT NULL,
	strategy     TEXT NOT NULL,
	timeframes   TEXT NOT NULL,
	sizing       TEXT NOT NULL,
	reason       TEXT NOT NULL DEFAULT '',
	generated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS signals_symbol_generated_at_idx ON signals (symbol, generated_at DESC);
`

const insertSignal = `
INSERT INTO signals (symbol, side, price, stop_loss, take_profit, quantity, strategy, timeframes, sizing, reason, generated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Journal пишет каждый сигнал в таблицу signals.
type Journal struct {
	tm db.TxManager
}

func NewJournal(tm db.TxManager) *Journal {
	return &Journal{tm: tm}
}

func (j *Journal) Name() string { return "journal" }

// EnsureSchema создаёт таблицу, если её нет. Вызывается на старте.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	_, err := db.ExecOne(ctx, j.tm, signalsSchema)
	return err
}

func (j *Journal) Send(ctx context.Context, sig models.Signal) error {
	n, err := db.ExecOne(ctx, j.tm, insertSignal,
		sig.Symbol,
		string(sig.Side),
		sig.Price,
		sig.StopLoss,
		sig.TakeProfit,
		sig.Quantity,
		string(sig.Strategy),
		strings.Join(sig.Timeframes, ","),
		sig.Sizing,
		sig.Reason,
		sig.GeneratedAt,
	)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("journal %s: %d rows inserted", sig.Symbol, n)
	}
	return nil
}
