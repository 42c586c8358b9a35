package payments

import "github.com/minebridge/cryptonote-pool/src/model"

// buildTransferCommands packs eligible payouts into transfer commands.
// Three rules shape the packing: at most MaxAddresses destinations per
// command, at most MaxTransactionAmount aggregate per command (when set),
// and a payment id destination always rides alone on its own command.
func (p *Processor) buildTransferCommands(eligible []eligiblePayment) []*model.TransferCommand {
	var commands []*model.TransferCommand
	var current *model.TransferCommand
	addresses := 0
	commandAmount := int64(0)

	closeCurrent := func() {
		current = nil
		addresses = 0
		commandAmount = 0
	}

	for _, pay := range eligible {
		if pay.paymentID != "" && addresses != 0 {
			// a payment id attaches to the whole transaction, so this
			// worker cannot share the open command
			closeCurrent()
		}

		amount := pay.amount
		if p.cfg.MaxTransactionAmount > 0 && amount+commandAmount > p.cfg.MaxTransactionAmount {
			// truncate to the command's headroom; the remainder stays on
			// the worker's balance until a later cycle
			amount = p.cfg.MaxTransactionAmount - commandAmount
		}

		if current == nil {
			current = &model.TransferCommand{
				Mixin: p.cfg.EffectiveMixin(),
				Fee:   p.cfg.TransferFee,
			}
			commands = append(commands, current)
		}
		if pay.paymentID != "" {
			current.PaymentID = pay.paymentID
		}

		current.Destinations = append(current.Destinations, model.Destination{
			Address: string(pay.address),
			Amount:  amount,
		})
		current.Settlement = append(current.Settlement, model.BalanceChange{
			Address: pay.address,
			Amount:  amount,
		})
		current.Amount += amount

		addresses++
		commandAmount += amount
		if addresses >= p.cfg.MaxAddresses ||
			(p.cfg.MaxTransactionAmount > 0 && commandAmount >= p.cfg.MaxTransactionAmount) ||
			pay.paymentID != "" {
			closeCurrent()
		}
	}
	return commands
}
