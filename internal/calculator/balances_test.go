package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name         string
		bills        []Bill
		wantErr      error
		validateFunc func(t *testing.T, balances map[int64]Balance)
	}{
		{
			name: "equal three-way split, payer included",
			bills: []Bill{
				{
					What:    "dinner",
					PayerID: 1,
					Amount:  d("90"),
					Shares: []Share{
						{MemberID: 1, Weight: d("1")},
						{MemberID: 2, Weight: d("1")},
						{MemberID: 3, Weight: d("1")},
					},
				},
			},
			validateFunc: func(t *testing.T, balances map[int64]Balance) {
				if !balances[1].Net.Equal(d("60")) {
					t.Errorf("member 1 net = %s, want 60", balances[1].Net)
				}
				if !balances[2].Net.Equal(d("-30")) {
					t.Errorf("member 2 net = %s, want -30", balances[2].Net)
				}
				if !balances[3].Net.Equal(d("-30")) {
					t.Errorf("member 3 net = %s, want -30", balances[3].Net)
				}
				if !balances[1].Paid.Equal(d("90")) {
					t.Errorf("member 1 paid = %s, want 90", balances[1].Paid)
				}
				if !balances[1].Spent.Equal(d("30")) {
					t.Errorf("member 1 spent = %s, want 30", balances[1].Spent)
				}
			},
		},
		{
			name: "weighted split 1:3",
			bills: []Bill{
				{
					What:    "groceries",
					PayerID: 3,
					Amount:  d("100"),
					Shares: []Share{
						{MemberID: 1, Weight: d("1")},
						{MemberID: 2, Weight: d("3")},
					},
				},
			},
			validateFunc: func(t *testing.T, balances map[int64]Balance) {
				if !balances[1].Spent.Equal(d("25")) {
					t.Errorf("member 1 spent = %s, want 25", balances[1].Spent)
				}
				if !balances[2].Spent.Equal(d("75")) {
					t.Errorf("member 2 spent = %s, want 75", balances[2].Spent)
				}
				if !balances[3].Net.Equal(d("100")) {
					t.Errorf("member 3 net = %s, want 100", balances[3].Net)
				}
			},
		},
		{
			name: "payer not among owers",
			bills: []Bill{
				{What: "taxi", PayerID: 1, Amount: d("10"), Shares: []Share{{MemberID: 2, Weight: d("1")}}},
				{What: "bar", PayerID: 1, Amount: d("20"), Shares: []Share{{MemberID: 3, Weight: d("1")}}},
			},
			validateFunc: func(t *testing.T, balances map[int64]Balance) {
				if !balances[1].Net.Equal(d("30")) {
					t.Errorf("member 1 net = %s, want 30", balances[1].Net)
				}
				if !balances[2].Net.Equal(d("-10")) {
					t.Errorf("member 2 net = %s, want -10", balances[2].Net)
				}
				if !balances[3].Net.Equal(d("-20")) {
					t.Errorf("member 3 net = %s, want -20", balances[3].Net)
				}
			},
		},
		{
			name: "zero-weight ower consumes nothing but gets an entry",
			bills: []Bill{
				{
					What:    "lunch",
					PayerID: 1,
					Amount:  d("30"),
					Shares: []Share{
						{MemberID: 1, Weight: d("1")},
						{MemberID: 2, Weight: d("0")},
					},
				},
			},
			validateFunc: func(t *testing.T, balances map[int64]Balance) {
				b, ok := balances[2]
				if !ok {
					t.Fatal("member 2 missing from balances")
				}
				if !b.Net.IsZero() {
					t.Errorf("member 2 net = %s, want 0", b.Net)
				}
				if !balances[1].Net.IsZero() {
					t.Errorf("member 1 net = %s, want 0", balances[1].Net)
				}
			},
		},
		{
			name:    "no owers rejected",
			bills:   []Bill{{What: "ghost", PayerID: 1, Amount: d("10")}},
			wantErr: ErrInvalidBill,
		},
		{
			name: "zero amount rejected",
			bills: []Bill{
				{What: "free", PayerID: 1, Amount: d("0"), Shares: []Share{{MemberID: 2, Weight: d("1")}}},
			},
			wantErr: ErrInvalidBill,
		},
		{
			name: "negative amount rejected",
			bills: []Bill{
				{What: "refund", PayerID: 1, Amount: d("-5"), Shares: []Share{{MemberID: 2, Weight: d("1")}}},
			},
			wantErr: ErrInvalidBill,
		},
		{
			name: "all-zero weights rejected",
			bills: []Bill{
				{
					What:    "phantom",
					PayerID: 1,
					Amount:  d("10"),
					Shares: []Share{
						{MemberID: 2, Weight: d("0")},
						{MemberID: 3, Weight: d("0")},
					},
				},
			},
			wantErr: ErrInvalidBill,
		},
		{
			name: "negative weight rejected",
			bills: []Bill{
				{
					What:    "odd",
					PayerID: 1,
					Amount:  d("10"),
					Shares:  []Share{{MemberID: 2, Weight: d("-1")}},
				},
			},
			wantErr: ErrInvalidBill,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, err := ComputeBalances(tt.bills)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ComputeBalances() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeBalances() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, balances)
			}
		})
	}
}

func TestComputeBalances_NetsSumToZero(t *testing.T) {
	// 100 split three ways does not divide evenly; the residue must stay
	// far below the published tolerance.
	bills := []Bill{
		{
			What:    "rent",
			PayerID: 1,
			Amount:  d("100"),
			Shares: []Share{
				{MemberID: 1, Weight: d("1")},
				{MemberID: 2, Weight: d("1")},
				{MemberID: 3, Weight: d("1")},
			},
		},
		{
			What:    "internet",
			PayerID: 2,
			Amount:  d("33.33"),
			Shares: []Share{
				{MemberID: 1, Weight: d("2")},
				{MemberID: 2, Weight: d("1")},
				{MemberID: 3, Weight: d("3")},
			},
		},
	}

	balances, err := ComputeBalances(bills)
	if err != nil {
		t.Fatalf("ComputeBalances() failed: %v", err)
	}

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Net)
	}
	if sum.Abs().GreaterThan(d("0.000000001")) {
		t.Errorf("nets sum to %s, want ~0", sum)
	}
}

func TestComputeBalances_EmptyLedger(t *testing.T) {
	balances, err := ComputeBalances(nil)
	if err != nil {
		t.Fatalf("ComputeBalances(nil) failed: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("expected empty balances, got %d entries", len(balances))
	}
}

func TestComputeBalances_UnweightedPayerAcrossBills(t *testing.T) {
	// Weighted scenario mirrored from a real household ledger: one member
	// carries double weight, one never pays.
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	bills := []Bill{
		{
			What: "raclette", PayerID: 1, Amount: d("10"), Date: date,
			Shares: []Share{{MemberID: 1, Weight: d("2")}, {MemberID: 2, Weight: d("1")}},
		},
		{
			What: "red wine", PayerID: 2, Amount: d("20"), Date: date,
			Shares: []Share{{MemberID: 1, Weight: d("2")}},
		},
		{
			What: "delicatessen", PayerID: 1, Amount: d("10"), Date: date,
			Shares: []Share{
				{MemberID: 1, Weight: d("2")},
				{MemberID: 2, Weight: d("1")},
				{MemberID: 3, Weight: d("1")},
			},
		},
	}

	balances, err := ComputeBalances(bills)
	if err != nil {
		t.Fatalf("ComputeBalances() failed: %v", err)
	}

	checks := []struct {
		member int64
		paid   string
		spent  string
		net    string
	}{
		{1, "20.00", "31.67", "-11.67"},
		{2, "20.00", "5.83", "14.17"},
		{3, "0.00", "2.50", "-2.50"},
	}
	for _, c := range checks {
		b := balances[c.member]
		if got := b.Paid.Round(2); !got.Equal(d(c.paid)) {
			t.Errorf("member %d paid = %s, want %s", c.member, got, c.paid)
		}
		if got := b.Spent.Round(2); !got.Equal(d(c.spent)) {
			t.Errorf("member %d spent = %s, want %s", c.member, got, c.spent)
		}
		if got := b.Net.Round(2); !got.Equal(d(c.net)) {
			t.Errorf("member %d net = %s, want %s", c.member, got, c.net)
		}
	}
}
