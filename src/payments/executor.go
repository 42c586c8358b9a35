package payments

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/minebridge/cryptonote-pool/src/walletapi"
	"go.uber.org/zap"
)

// executeTransfers submits every command to the wallet service, one
// goroutine per command. Commands are independent: a rejected transfer
// leaves its workers' balances untouched for the next cycle and never
// blocks the other commands.
func (p *Processor) executeTransfers(ctx context.Context, logger *zap.Logger, commands []*model.TransferCommand) (sent, failed int64) {
	baseTime := p.clock().Unix()
	var timeOffset int64
	var sentCount, failedCount int64

	var wg sync.WaitGroup
	for _, cmd := range commands {
		wg.Add(1)
		go func(cmd *model.TransferCommand) {
			defer wg.Done()
			txHash, err := p.wallet.SendTransfer(ctx, walletapi.TransferRequest{
				Destinations: cmd.Destinations,
				Mixin:        cmd.Mixin,
				Fee:          cmd.Fee,
				PaymentID:    cmd.PaymentID,
			})
			if err != nil {
				logger.Error("error sending transfer to wallet",
					zap.Any("destinations", cmd.Destinations), zap.Error(err))
				atomic.AddInt64(&failedCount, 1)
				recordTransferFailed()
				return
			}
			logger.Info("payment sent via wallet daemon",
				zap.String("tx", txHash), zap.Int64("amount", cmd.Amount),
				zap.Int("recipients", len(cmd.Destinations)))

			// offsets are handed out in submission-success order, keeping
			// history scores strictly increasing inside one cycle even when
			// commands resolve within the same second
			timestamp := baseTime + atomic.AddInt64(&timeOffset, 1) - 1

			record := p.resolvePaymentRecord(ctx, logger, cmd, txHash, timestamp)
			if err := p.recordSettlement(ctx, logger, cmd, record); err != nil {
				atomic.AddInt64(&failedCount, 1)
				return
			}
			atomic.AddInt64(&sentCount, 1)
			recordTransferSent(cmd.Amount)
		}(cmd)
	}
	wg.Wait()
	return atomic.LoadInt64(&sentCount), atomic.LoadInt64(&failedCount)
}

// resolvePaymentRecord asks the wallet for the real fee and mixin of the
// sent transaction. The transfer already succeeded, so a failed lookup only
// degrades the history entry to the requested values.
func (p *Processor) resolvePaymentRecord(ctx context.Context, logger *zap.Logger, cmd *model.TransferCommand,
	txHash string, timestamp int64) model.PaymentRecord {
	record := model.PaymentRecord{
		TxHash:     txHash,
		Amount:     cmd.Amount,
		Fee:        cmd.Fee,
		Mixin:      cmd.Mixin,
		Recipients: len(cmd.Destinations),
		Timestamp:  timestamp,
	}
	details, err := p.wallet.GetTransaction(ctx, txHash)
	if err != nil {
		logger.Warn("could not fetch transaction details, recording requested values",
			zap.String("tx", txHash), zap.Error(err))
		return record
	}
	record.Fee = details.Fee
	record.Mixin = details.Mixin
	record.Recipients = details.Recipients
	return record
}
