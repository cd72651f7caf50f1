package calculator

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// settleEpsilon is the magnitude below which a party counts as
	// settled. 0.005 guarantees every emitted transfer renders as at
	// least 0.01 at two decimals.
	settleEpsilon = decimal.NewFromFloat(0.005)

	// zeroTolerance bounds the acceptable imbalance of the input ledger.
	// Far above decimal division error, far below a cent.
	zeroTolerance = decimal.NewFromFloat(1e-9)
)

// Transaction is one transfer in a settlement plan: From pays To.
type Transaction struct {
	From   int64
	To     int64
	Amount decimal.Decimal
}

// party is one side of the matching: a member and their remaining
// magnitude (always positive, whether credit or debt).
type party struct {
	id     int64
	amount decimal.Decimal
}

// partyHeap orders parties by amount descending, member id ascending on
// ties. The id tiebreak makes the whole plan deterministic.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if c := h[i].amount.Cmp(h[j].amount); c != 0 {
		return c > 0
	}
	return h[i].id < h[j].id
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// ComputeSettlement produces the transfers that clear a balanced ledger.
//
// Matching is greedy largest-first: the biggest remaining creditor is
// paired with the biggest remaining debtor, the smaller of the two
// magnitudes moves between them, and whichever side still carries more
// than settleEpsilon goes back into its queue. Parties already within
// settleEpsilon of zero never appear in the plan.
//
// The returned plan is sorted by (From, To). An empty or fully settled
// ledger yields an empty plan. If the input does not sum to zero within
// zeroTolerance the ledger is corrupt and ErrImbalancedLedger is
// returned.
func ComputeSettlement(net map[int64]decimal.Decimal) ([]Transaction, error) {
	sum := decimal.Zero
	for _, n := range net {
		sum = sum.Add(n)
	}
	if sum.Abs().GreaterThan(zeroTolerance) {
		return nil, fmt.Errorf("%w: off by %s", ErrImbalancedLedger, sum)
	}

	creditors := &partyHeap{}
	debtors := &partyHeap{}
	for id, n := range net {
		switch {
		case n.GreaterThanOrEqual(settleEpsilon):
			*creditors = append(*creditors, party{id: id, amount: n})
		case n.Neg().GreaterThanOrEqual(settleEpsilon):
			*debtors = append(*debtors, party{id: id, amount: n.Neg()})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	plan := []Transaction{}
	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := heap.Pop(creditors).(party)
		debtor := heap.Pop(debtors).(party)

		amount := decimal.Min(creditor.amount, debtor.amount)
		plan = append(plan, Transaction{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		if rest := creditor.amount.Sub(amount); rest.GreaterThanOrEqual(settleEpsilon) {
			heap.Push(creditors, party{id: creditor.id, amount: rest})
		}
		if rest := debtor.amount.Sub(amount); rest.GreaterThanOrEqual(settleEpsilon) {
			heap.Push(debtors, party{id: debtor.id, amount: rest})
		}
	}

	sort.Slice(plan, func(i, j int) bool {
		if plan[i].From != plan[j].From {
			return plan[i].From < plan[j].From
		}
		return plan[i].To < plan[j].To
	})

	return plan, nil
}
