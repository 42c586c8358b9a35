package payments

import (
	"testing"

	"github.com/minebridge/cryptonote-pool/src/walletapi"
)

func TestDenominationFloor(t *testing.T) {
	cfg := testConfig()
	cfg.Denomination = 10000
	p := newTestProcessor(cfg, newFakeLedger(), walletapi.NewMockWalletClient())

	cases := []struct {
		balance int64
		payout  int64
	}{
		{150000, 150000},
		{105000, 100000},
		{109999, 100000},
		{9999, 0}, // below one denomination, nothing payable
	}
	for _, c := range cases {
		eligible := p.filterEligible([]workerPayout{{address: "w", balance: c.balance, threshold: 100}})
		if c.payout == 0 {
			if len(eligible) != 0 {
				t.Fatalf("balance %d: expected no eligible payout, got %v", c.balance, eligible)
			}
			continue
		}
		if len(eligible) != 1 {
			t.Fatalf("balance %d: expected one eligible payout", c.balance)
		}
		if eligible[0].amount != c.payout {
			t.Fatalf("balance %d: expected payout %d, got %d", c.balance, c.payout, eligible[0].amount)
		}
		if eligible[0].amount > c.balance || eligible[0].amount < 0 {
			t.Fatalf("balance %d: payout %d outside [0, balance]", c.balance, eligible[0].amount)
		}
	}
}

func TestThresholdExcludesWorkers(t *testing.T) {
	p := newTestProcessor(testConfig(), newFakeLedger(), walletapi.NewMockWalletClient())

	eligible := p.filterEligible([]workerPayout{
		{address: "under", balance: 90, threshold: 100},
		{address: "exact", balance: 100, threshold: 100},
		{address: "over", balance: 150, threshold: 100},
	})
	if len(eligible) != 2 {
		t.Fatalf("expected 2 eligible workers, got %d", len(eligible))
	}
	if eligible[0].address != "exact" || eligible[1].address != "over" {
		t.Fatalf("wrong eligible set: %v", eligible)
	}
}
