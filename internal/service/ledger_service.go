package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/calculator"
	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// LedgerService derives balances, settlement plans, and statistics
// from a project's bills. It never writes anything: a settlement plan
// is advice, not a recorded transaction.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// BalanceRow pairs a member with their aggregate position.
type BalanceRow struct {
	Member  models.Member
	Paid    decimal.Decimal
	Spent   decimal.Decimal
	Balance decimal.Decimal
}

// Transfer is one settlement step with both ends resolved to members.
type Transfer struct {
	From   models.Member
	To     models.Member
	Amount decimal.Decimal
}

// ProjectStats bundles the statistics view of a project.
type ProjectStats struct {
	Rows         []BalanceRow
	Monthly      map[int]map[time.Month]decimal.Decimal
	ActiveMonths []calculator.YearMonth
}

// load fetches a project's members and bills and converts the bills to
// calculator inputs, resolving each ower to their current weight. The
// member slice keeps the listing order, activated members first.
func (s *LedgerService) load(ctx context.Context, projectID string) ([]models.Member, []calculator.Bill, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, nil, err
	}

	members, err := s.store.ListMembers(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	weights := make(map[int64]decimal.Decimal, len(members))
	for _, m := range members {
		weights[m.ID] = m.Weight
	}

	bills, err := s.store.ListBills(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	calcBills := make([]calculator.Bill, 0, len(bills))
	for _, b := range bills {
		shares := make([]calculator.Share, 0, len(b.OwerIDs))
		for _, id := range b.OwerIDs {
			w, ok := weights[id]
			if !ok {
				return nil, nil, fmt.Errorf("bill %d references unknown member %d", b.ID, id)
			}
			shares = append(shares, calculator.Share{MemberID: id, Weight: w})
		}
		calcBills = append(calcBills, calculator.Bill{
			What:    b.What,
			PayerID: b.PayerID,
			Amount:  b.Amount,
			Date:    b.Date,
			Shares:  shares,
		})
	}
	return members, calcBills, nil
}

// Balances returns one row per member, deactivated members included,
// ordered like the member listing.
func (s *LedgerService) Balances(ctx context.Context, projectID string) ([]BalanceRow, error) {
	members, bills, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.ComputeBalances(bills)
	if err != nil {
		return nil, err
	}

	rows := make([]BalanceRow, 0, len(members))
	for _, m := range members {
		b := balances[m.ID]
		rows = append(rows, BalanceRow{Member: m, Paid: b.Paid, Spent: b.Spent, Balance: b.Net})
	}
	return rows, nil
}

// Settlement returns the transfer plan that clears the project's
// ledger with as few transactions as the greedy pairing produces.
func (s *LedgerService) Settlement(ctx context.Context, projectID string) ([]Transfer, error) {
	members, bills, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	balances, err := calculator.ComputeBalances(bills)
	if err != nil {
		return nil, err
	}
	net := make(map[int64]decimal.Decimal, len(balances))
	for id, b := range balances {
		net[id] = b.Net
	}

	plan, err := calculator.ComputeSettlement(net)
	if err != nil {
		return nil, err
	}

	transfers := make([]Transfer, 0, len(plan))
	for _, t := range plan {
		from, ok := byID[t.From]
		if !ok {
			return nil, fmt.Errorf("settlement references unknown member %d", t.From)
		}
		to, ok := byID[t.To]
		if !ok {
			return nil, fmt.Errorf("settlement references unknown member %d", t.To)
		}
		transfers = append(transfers, Transfer{From: from, To: to, Amount: t.Amount})
	}
	return transfers, nil
}

// Stats returns per-member totals plus the monthly spending breakdown.
func (s *LedgerService) Stats(ctx context.Context, projectID string) (*ProjectStats, error) {
	members, bills, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Member, len(members))
	refs := make([]calculator.MemberRef, 0, len(members))
	for _, m := range members {
		byID[m.ID] = m
		refs = append(refs, calculator.MemberRef{ID: m.ID, Name: m.Name})
	}

	stats, err := calculator.ComputeStats(refs, bills)
	if err != nil {
		return nil, err
	}

	rows := make([]BalanceRow, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, BalanceRow{
			Member:  byID[st.MemberID],
			Paid:    st.Paid,
			Spent:   st.Spent,
			Balance: st.Balance,
		})
	}

	return &ProjectStats{
		Rows:         rows,
		Monthly:      calculator.MonthlyTotals(bills),
		ActiveMonths: calculator.ActiveMonths(bills),
	}, nil
}
