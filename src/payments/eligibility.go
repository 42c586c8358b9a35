package payments

import "github.com/minebridge/cryptonote-pool/src/model"

// eligiblePayment is one worker's denomination-floored payout for this
// cycle, in collection order.
type eligiblePayment struct {
	address   model.WorkerAddr
	amount    int64
	paymentID string
}

// filterEligible keeps workers at or above their threshold and floors each
// balance to the denomination so no sub-denomination dust ever leaves the
// pool wallet.
func (p *Processor) filterEligible(workers []workerPayout) []eligiblePayment {
	eligible := make([]eligiblePayment, 0, len(workers))
	for _, w := range workers {
		if w.balance < w.threshold {
			continue
		}
		payout := w.balance - w.balance%p.cfg.Denomination
		if payout <= 0 {
			continue
		}
		eligible = append(eligible, eligiblePayment{
			address:   w.address,
			amount:    payout,
			paymentID: w.paymentID,
		})
	}
	return eligible
}
