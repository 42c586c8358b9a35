package model

import (
	"fmt"
	"strings"
)

type WorkerAddr string

// WorkerAccount is the per-worker record kept in the ledger store under
// `<coin>:workers:<address>`. Balance and Paid are in minor units.
type WorkerAccount struct {
	Address        WorkerAddr
	Balance        int64
	MinPayoutLevel int64
	Paid           int64
}

type Destination struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// BalanceChange is a pending ledger mutation for one destination of a
// transfer command: Amount comes off the worker's balance and goes onto
// its paid total when the command settles.
type BalanceChange struct {
	Address WorkerAddr
	Amount  int64
}

// TransferCommand is one wallet transfer request plus the ledger mutations
// to apply once it succeeds. A command carries a PaymentID only when it has
// exactly one destination; payment ids attach to the whole transaction, so
// sharing one across recipients would misattribute funds.
type TransferCommand struct {
	Destinations []Destination
	Amount       int64
	PaymentID    string
	Mixin        int64
	Fee          int64
	Settlement   []BalanceChange
}

// PaymentRecord is one entry of the global payment history.
type PaymentRecord struct {
	TxHash     string
	Amount     int64
	Fee        int64
	Mixin      int64
	Recipients int
	Timestamp  int64
}

type WorkerPayment struct {
	Address WorkerAddr
	Amount  int64
}

// SettlementBatch is everything the ledger store must commit atomically for
// one settled command: the balance/paid changes, the global history entry
// and one history entry per destination, all scored by Payment.Timestamp.
type SettlementBatch struct {
	Changes   []BalanceChange
	Payment   PaymentRecord
	PerWorker []WorkerPayment
}

// GlobalEntry renders the `<coin>:payments:all` log format.
func (r PaymentRecord) GlobalEntry() string {
	return strings.Join([]string{
		r.TxHash,
		fmt.Sprintf("%d", r.Amount),
		fmt.Sprintf("%d", r.Fee),
		fmt.Sprintf("%d", r.Mixin),
		fmt.Sprintf("%d", r.Recipients),
	}, ":")
}

// WorkerEntry renders the `<coin>:payments:<address>` log format for one
// destination of the recorded transaction.
func (r PaymentRecord) WorkerEntry(amount int64) string {
	return fmt.Sprintf("%s:%d:%d", r.TxHash, amount, r.Fee)
}
