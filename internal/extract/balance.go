package extract

import "github.com/insightdelivered/extrato-ofx/internal/models"

// reconcileBalances recomputes each transaction's post-transaction balance.
//
// Per-transaction balances recovered from text position are unreliable (they
// may belong to the wrong column or be absent), while the daily closing
// balances printed in SALDO rows are authoritative. For each date with a
// published balance B, the day's opening is B minus the day's net movement;
// the day's transactions are then walked in extracted order, accumulating
// from that opening. Dates without a published balance continue the running
// balance carried from the previous date.
//
// txns must already be sorted oldest first. daily maps ISO date -> signed
// closing balance; opening seeds the chain (0 or an extracted "saldo
// anterior" literal).
func reconcileBalances(txns []models.Transaction, daily map[string]float64, opening float64) {
	running := opening
	for i := 0; i < len(txns); {
		j := i
		for j < len(txns) && txns[j].Date == txns[i].Date {
			j++
		}

		dayStart := running
		if published, ok := daily[txns[i].Date]; ok {
			delta := 0.0
			for k := i; k < j; k++ {
				delta += txns[k].SignedValue()
			}
			dayStart = published - delta
		}

		bal := dayStart
		for k := i; k < j; k++ {
			bal = round2(bal + txns[k].SignedValue())
			txns[k].Balance = bal
		}
		running = bal
		i = j
	}
}

// applyRunningBalance is the fallback for layouts that publish no balances
// at all: a single chain seeded at opening, accumulated across the whole
// sorted list.
func applyRunningBalance(txns []models.Transaction, opening float64) {
	bal := opening
	for i := range txns {
		bal = round2(bal + txns[i].SignedValue())
		txns[i].Balance = bal
	}
}
