package payments

import (
	"context"
	"time"

	"github.com/minebridge/cryptonote-pool/src/addressing"
	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/minebridge/cryptonote-pool/src/walletapi"
	"go.uber.org/zap"
)

// LedgerStore is the key-value ledger collaborator. SettlePayment must be
// atomic: the balance changes and the history entries land together or not
// at all.
type LedgerStore interface {
	WorkerBalances(ctx context.Context) ([]model.WorkerAccount, error)
	SettlePayment(ctx context.Context, batch model.SettlementBatch) error
}

// Processor runs the settlement pipeline: collect balances, filter
// eligible workers, batch them into transfer commands, submit the commands
// and record the outcomes in the ledger.
type Processor struct {
	cfg     Config
	store   LedgerStore
	wallet  walletapi.WalletClient
	decoder addressing.AddressDecoder
	logger  *zap.Logger
	archive bool

	clock func() time.Time
}

func NewProcessor(cfg Config, store LedgerStore, wallet walletapi.WalletClient,
	decoder addressing.AddressDecoder, logger *zap.Logger) *Processor {
	return &Processor{
		cfg:     cfg,
		store:   store,
		wallet:  wallet,
		decoder: decoder,
		logger:  logger.With(zap.String("component", "payments")),
		archive: cfg.PostgresConfig != "",
		clock:   time.Now,
	}
}
