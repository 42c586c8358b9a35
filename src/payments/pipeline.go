package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minebridge/cryptonote-pool/src/walletapi"
	"go.uber.org/zap"
)

// CycleResult is the tagged outcome of one settlement cycle: either the
// cycle failed outright (Err set), had nothing to do (Skipped), or ran the
// pipeline with the given command counts.
type CycleResult struct {
	Eligible int
	Sent     int64
	Failed   int64
	Skipped  bool
	Err      error
}

// Start runs settlement cycles forever, waiting the configured interval
// after each cycle fully settles. Cycles never overlap and any outcome,
// including a failed cycle, just reschedules the next one.
func (p *Processor) Start(ctx context.Context) {
	delay := time.Duration(p.cfg.Interval) * time.Second
	for {
		result := p.DoCycleOnce(ctx)
		recordCycle(result)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			p.logger.Info("stopping payment processor, context cancelled")
			return
		}
	}
}

// DoCycleOnce runs one full pass of the pipeline: open wallet, collect,
// filter, batch, execute, record.
func (p *Processor) DoCycleOnce(ctx context.Context) CycleResult {
	logger := p.logger.With(zap.String("cycle", uuid.NewString()))

	// the wallet may already be open, so this is advisory only
	if err := p.wallet.OpenWallet(ctx, walletapi.OpenWalletRequest{
		DaemonHost: p.cfg.Wallet.DaemonHost,
		DaemonPort: p.cfg.Wallet.DaemonPort,
		Filename:   p.cfg.Wallet.Filename,
		Password:   p.cfg.Wallet.Password,
	}); err != nil {
		logger.Warn("wallet open failed (wallet may already be open)", zap.Error(err))
	}

	workers, err := p.collectBalances(ctx, logger)
	if err != nil {
		logger.Error("payments processing failed", zap.Error(err))
		return CycleResult{Err: err}
	}

	eligible := p.filterEligible(workers)
	if len(eligible) == 0 {
		logger.Info("no workers' balances reached the minimum payment threshold")
		return CycleResult{Skipped: true}
	}

	commands := p.buildTransferCommands(eligible)
	sent, failed := p.executeTransfers(ctx, logger, commands)
	logger.Info(fmt.Sprintf("payments splintered and %d successfully sent, %d failed", sent, failed))

	return CycleResult{Eligible: len(eligible), Sent: sent, Failed: failed}
}
