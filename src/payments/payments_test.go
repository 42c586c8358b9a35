package payments

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/minebridge/cryptonote-pool/src/addressing"
	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/minebridge/cryptonote-pool/src/walletapi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const testPrefix = 0x3bb2

// testAddr builds a decodable plain address from a one-byte key seed.
func testAddr(seed byte) string {
	return addressing.Encode(testPrefix, bytes.Repeat([]byte{seed}, 64), nil)
}

// testIntegratedAddr builds an address carrying an embedded payment id.
func testIntegratedAddr(seed byte, paymentID []byte) string {
	return addressing.Encode(testPrefix, bytes.Repeat([]byte{seed}, 64), paymentID)
}

// fakeLedger is an in-memory LedgerStore. Balances are applied the same way
// the redis store applies them, so full-cycle tests can assert ledger state.
type fakeLedger struct {
	mu         sync.Mutex
	accounts   map[model.WorkerAddr]*model.WorkerAccount
	settled    []model.SettlementBatch
	failRead   bool
	failSettle bool
}

func newFakeLedger(accounts ...model.WorkerAccount) *fakeLedger {
	f := &fakeLedger{accounts: map[model.WorkerAddr]*model.WorkerAccount{}}
	for i := range accounts {
		a := accounts[i]
		f.accounts[a.Address] = &a
	}
	return f
}

func (f *fakeLedger) WorkerBalances(ctx context.Context) ([]model.WorkerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return nil, errors.New("ledger unreachable")
	}
	out := make([]model.WorkerAccount, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (f *fakeLedger) SettlePayment(ctx context.Context, batch model.SettlementBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSettle {
		return errors.New("ledger write failed")
	}
	for _, ch := range batch.Changes {
		account := f.accounts[ch.Address]
		account.Balance -= ch.Amount
		account.Paid += ch.Amount
	}
	f.settled = append(f.settled, batch)
	return nil
}

func (f *fakeLedger) account(addr string) model.WorkerAccount {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.accounts[model.WorkerAddr(addr)]
}

func (f *fakeLedger) settledBatches() []model.SettlementBatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SettlementBatch{}, f.settled...)
}

func testConfig() Config {
	return Config{
		Coin:                "trtl",
		MinPayment:          100,
		MinPaymentIDPayment: 500,
		Denomination:        10,
		Mixin:               3,
		TransferFee:         10,
		MaxAddresses:        10,
		Interval:            100,
	}
}

func newTestProcessor(cfg Config, store LedgerStore, wallet walletapi.WalletClient) *Processor {
	p := NewProcessor(cfg, store, wallet, addressing.NewBase58Decoder(testPrefix), zap.NewNop())
	p.clock = func() time.Time { return time.Unix(1600000000, 0) }
	return p
}
