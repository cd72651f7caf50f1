package calculator

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidBill indicates a bill that cannot be aggregated: no owers,
	// a non-positive amount, or a degenerate weight set.
	ErrInvalidBill = errors.New("invalid bill")

	// ErrImbalancedLedger indicates balances that do not sum to zero.
	// A ledger built by ComputeBalances always sums to zero, so seeing
	// this means the input was corrupted, not that a user erred.
	ErrImbalancedLedger = errors.New("balances do not sum to zero")
)

// divPrecision is the scale for share division. Sixteen fractional
// digits keeps per-bill rounding error below 1e-12.
const divPrecision = 16

// Share is one beneficiary of a bill. Weight scales the member's part of
// the amount relative to the other owers.
type Share struct {
	MemberID int64
	Weight   decimal.Decimal
}

// Bill is the minimal bill view needed for aggregation.
type Bill struct {
	What    string
	PayerID int64
	Amount  decimal.Decimal
	Date    time.Time
	Shares  []Share
}

// Balance is one member's aggregate position. Net is positive for
// members who are owed money and negative for members who owe.
type Balance struct {
	Paid  decimal.Decimal // total of bills the member paid for
	Spent decimal.Decimal // total of the member's weighted shares
	Net   decimal.Decimal // Paid - Spent
}

// ComputeBalances folds bills into per-member balances.
//
// A bill's amount is split across its owers in proportion to their
// weights: share = amount * weight / sum(weights). The payer's Paid grows
// by the full amount; their own share, if they are an ower, counts toward
// Spent like anyone else's. Members appearing only as payer or only as
// ower still get an entry.
func ComputeBalances(bills []Bill) (map[int64]Balance, error) {
	balances := make(map[int64]Balance)

	for _, bill := range bills {
		if len(bill.Shares) == 0 {
			return nil, fmt.Errorf("%w: %q has no owers", ErrInvalidBill, bill.What)
		}
		if !bill.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: %q has non-positive amount %s", ErrInvalidBill, bill.What, bill.Amount)
		}

		totalWeight := decimal.Zero
		for _, share := range bill.Shares {
			if share.Weight.IsNegative() {
				return nil, fmt.Errorf("%w: %q has negative weight for member %d", ErrInvalidBill, bill.What, share.MemberID)
			}
			totalWeight = totalWeight.Add(share.Weight)
		}
		if !totalWeight.IsPositive() {
			return nil, fmt.Errorf("%w: %q has zero total ower weight", ErrInvalidBill, bill.What)
		}

		payer := balances[bill.PayerID]
		payer.Paid = payer.Paid.Add(bill.Amount)
		balances[bill.PayerID] = payer

		for _, share := range bill.Shares {
			owed := bill.Amount.Mul(share.Weight).DivRound(totalWeight, divPrecision)
			b := balances[share.MemberID]
			b.Spent = b.Spent.Add(owed)
			balances[share.MemberID] = b
		}
	}

	for id, b := range balances {
		b.Net = b.Paid.Sub(b.Spent)
		balances[id] = b
	}

	return balances, nil
}
