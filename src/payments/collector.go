package payments

import (
	"context"

	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// workerPayout is a worker that survived address validation, with the
// effective threshold already floored for payment id addresses.
type workerPayout struct {
	address   model.WorkerAddr
	balance   int64
	threshold int64
	paymentID string
}

// collectBalances reads every worker account and validates its address.
// Workers with undecodable addresses are skipped, not fatal: they stay in
// the ledger untouched until someone fixes the address.
func (p *Processor) collectBalances(ctx context.Context, logger *zap.Logger) ([]workerPayout, error) {
	accounts, err := p.store.WorkerBalances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading worker balances from ledger")
	}

	workers := make([]workerPayout, 0, len(accounts))
	for _, account := range accounts {
		decoded, err := p.decoder.Decode(string(account.Address))
		if err != nil {
			logger.Error("skipping invalid miner payment address",
				zap.String("worker", string(account.Address)), zap.Error(err))
			continue
		}

		threshold := account.MinPayoutLevel
		if threshold == 0 {
			threshold = p.cfg.MinPayment
		}
		if decoded.PaymentID != "" && threshold < p.cfg.MinPaymentIDPayment {
			// payment id transfers get a dedicated transaction each, so
			// they must clear a higher bar to stay economical
			threshold = p.cfg.MinPaymentIDPayment
		}
		logger.Info("using payout level for worker",
			zap.String("worker", string(account.Address)),
			zap.Int64("level", threshold),
			zap.Int64("balance", account.Balance))

		workers = append(workers, workerPayout{
			address:   account.Address,
			balance:   account.Balance,
			threshold: threshold,
			paymentID: decoded.PaymentID,
		})
	}
	return workers, nil
}
