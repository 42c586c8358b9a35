package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/minebridge/cryptonote-pool/src/walletapi"
)

func TestCycleSkipsWhenNothingEligible(t *testing.T) {
	addr := testAddr(0x11)
	store := newFakeLedger(
		model.WorkerAccount{Address: model.WorkerAddr(addr), Balance: 50}, // under min_payment
	)
	wallet := walletapi.NewMockWalletClient()
	p := newTestProcessor(testConfig(), store, wallet)

	result := p.DoCycleOnce(context.Background())
	if !result.Skipped || result.Err != nil {
		t.Fatalf("expected a skipped cycle, got %+v", result)
	}
	if len(wallet.Transfers) != 0 {
		t.Fatal("a skipped cycle must not touch the wallet")
	}
	if got := store.account(addr); got.Balance != 50 || got.Paid != 0 {
		t.Fatalf("a skipped cycle must not touch the ledger: %+v", got)
	}
}

func TestCycleFailsWhenLedgerUnreachable(t *testing.T) {
	store := newFakeLedger()
	store.failRead = true
	p := newTestProcessor(testConfig(), store, walletapi.NewMockWalletClient())

	result := p.DoCycleOnce(context.Background())
	if result.Err == nil {
		t.Fatal("expected the cycle to fail")
	}
}

func TestFullCycleSettlement(t *testing.T) {
	w1 := testAddr(0x21)
	w2 := testAddr(0x22)
	store := newFakeLedger(
		model.WorkerAccount{Address: model.WorkerAddr(w1), Balance: 155},
		model.WorkerAccount{Address: model.WorkerAddr(w2), Balance: 230},
	)
	wallet := walletapi.NewMockWalletClient()
	p := newTestProcessor(testConfig(), store, wallet)

	result := p.DoCycleOnce(context.Background())
	if result.Err != nil || result.Skipped {
		t.Fatalf("expected a completed cycle, got %+v", result)
	}
	if result.Sent != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 command sent, got %+v", result)
	}

	// payouts are floored to the denomination; the remainder stays owed
	if got := store.account(w1); got.Balance != 5 || got.Paid != 150 {
		t.Fatalf("w1 settled wrong: %+v", got)
	}
	if got := store.account(w2); got.Balance != 0 || got.Paid != 230 {
		t.Fatalf("w2 settled wrong: %+v", got)
	}

	batches := store.settledBatches()
	if len(batches) != 1 {
		t.Fatalf("expected 1 settlement batch, got %d", len(batches))
	}
	batch := batches[0]
	if batch.Payment.Amount != 380 {
		t.Fatalf("wrong aggregate amount: %d", batch.Payment.Amount)
	}

	expectedGlobal := fmt.Sprintf("%s:380:%d:%d:2", batch.Payment.TxHash, batch.Payment.Fee, batch.Payment.Mixin)
	if d := cmp.Diff(expectedGlobal, batch.Payment.GlobalEntry()); d != "" {
		t.Fatalf("wrong global history entry: %s", d)
	}

	perWorker := map[model.WorkerAddr]string{}
	for _, wp := range batch.PerWorker {
		perWorker[wp.Address] = batch.Payment.WorkerEntry(wp.Amount)
	}
	expected := map[model.WorkerAddr]string{
		model.WorkerAddr(w1): fmt.Sprintf("%s:150:%d", batch.Payment.TxHash, batch.Payment.Fee),
		model.WorkerAddr(w2): fmt.Sprintf("%s:230:%d", batch.Payment.TxHash, batch.Payment.Fee),
	}
	if d := cmp.Diff(expected, perWorker); d != "" {
		t.Fatalf("wrong per-worker history entries: %s", d)
	}
}
