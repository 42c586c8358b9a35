package payments

import (
	"context"

	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/minebridge/cryptonote-pool/src/postgres"
	"go.uber.org/zap"
)

// recordSettlement commits the ledger side of a transfer that the wallet
// already accepted. If the atomic batch fails here the funds are on chain
// but the balances still show them owed; retrying would risk paying the
// command twice, so this is surfaced for manual reconciliation instead.
func (p *Processor) recordSettlement(ctx context.Context, logger *zap.Logger, cmd *model.TransferCommand,
	record model.PaymentRecord) error {
	perWorker := make([]model.WorkerPayment, 0, len(cmd.Destinations))
	for _, dest := range cmd.Destinations {
		perWorker = append(perWorker, model.WorkerPayment{
			Address: model.WorkerAddr(dest.Address),
			Amount:  dest.Amount,
		})
	}
	batch := model.SettlementBatch{
		Changes:   cmd.Settlement,
		Payment:   record,
		PerWorker: perWorker,
	}

	if err := p.store.SettlePayment(ctx, batch); err != nil {
		logger.Error("super critical: payment sent but ledger update failed, double payouts likely without manual reconciliation",
			zap.String("tx", record.TxHash),
			zap.Any("destinations", cmd.Destinations),
			zap.Error(err))
		recordLedgerFailure()
		return err
	}

	if p.archive && postgres.Enabled() {
		if err := postgres.ArchivePayment(ctx, batch); err != nil {
			logger.Warn("failed archiving payment to postgres",
				zap.String("tx", record.TxHash), zap.Error(err))
		}
	}
	return nil
}
