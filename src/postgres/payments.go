package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/pkg/errors"
)

// ArchivePayment archives one settled command, one row per destination.
// The redis ledger is authoritative; this table only feeds reporting, so
// callers treat failures as a warning, never as a settlement failure.
func ArchivePayment(ctx context.Context, batch model.SettlementBatch) error {
	return DoQuery(ctx, func(conn *pgx.Conn) error {
		paidAt := time.Unix(batch.Payment.Timestamp, 0).UTC()
		rows := make([][]any, 0, len(batch.PerWorker))
		for _, wp := range batch.PerWorker {
			rows = append(rows, []any{
				batch.Payment.TxHash, string(wp.Address), wp.Amount, batch.Payment.Fee, batch.Payment.Mixin, paidAt,
			})
		}

		_, err := conn.CopyFrom(context.Background(), pgx.Identifier{"payments_archive"},
			[]string{"tx", "address", "amount", "fee", "mixin", "paid_at"}, pgx.CopyFromRows(rows))
		if err != nil {
			return errors.Wrap(err, "failed to write to payments archive")
		}
		return nil
	})
}
