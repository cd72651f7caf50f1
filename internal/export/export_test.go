package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/service"
)

func TestBillRows(t *testing.T) {
	members := []models.Member{
		{ID: 1, Name: "Alice", Weight: decimal.NewFromInt(1)},
		{ID: 2, Name: "Bob", Weight: decimal.NewFromInt(1)},
	}
	bills := []models.Bill{
		{
			ID:               7,
			What:             "Groceries",
			PayerID:          1,
			Amount:           decimal.RequireFromString("41.37"),
			Date:             time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
			OriginalCurrency: "EUR",
			OwerIDs:          []int64{1, 2},
		},
	}

	rows := BillRows(bills, members)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Payer != "Alice" {
		t.Errorf("Payer = %q, want Alice", row.Payer)
	}
	if row.PayerWeight != 1 {
		t.Errorf("PayerWeight = %v, want 1", row.PayerWeight)
	}
	if row.Amount != 41.37 {
		t.Errorf("Amount = %v, want 41.37", row.Amount)
	}
	if len(row.Owers) != 2 || row.Owers[1] != "Bob" {
		t.Errorf("Owers = %v, want [Alice Bob]", row.Owers)
	}

	t.Run("weighted payer keeps the exact weight", func(t *testing.T) {
		members[0].Weight = decimal.RequireFromString("1.5")
		rows := BillRows(bills, members)
		if rows[0].PayerWeight != 1.5 {
			t.Errorf("PayerWeight = %v, want 1.5", rows[0].PayerWeight)
		}
	})

	t.Run("unknown member id keeps the row usable", func(t *testing.T) {
		bills[0].PayerID = 42
		rows := BillRows(bills, members)
		if rows[0].Payer != "#42" {
			t.Errorf("Payer = %q, want #42", rows[0].Payer)
		}
	})
}

func TestWriteBillsCSV(t *testing.T) {
	rows := []BillRow{
		{
			Date:        "2026-03-14",
			What:        "Groceries, and wine",
			Payer:       "Alice",
			PayerWeight: 1.5,
			Amount:      41.37,
			Currency:    "EUR",
			Owers:       []string{"Alice", "Bob"},
		},
	}

	var buf bytes.Buffer
	if err := WriteBillsCSV(&buf, rows); err != nil {
		t.Fatalf("WriteBillsCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "date,what,payer,payer_weight,amount,currency,owers" {
		t.Errorf("header = %q", lines[0])
	}
	// Fields containing commas come out quoted.
	if lines[1] != `2026-03-14,"Groceries, and wine",Alice,1.5,41.37,EUR,"Alice, Bob"` {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteTransfersCSV(t *testing.T) {
	plan := []service.Transfer{
		{
			From:   models.Member{ID: 2, Name: "Bob"},
			To:     models.Member{ID: 1, Name: "Alice"},
			Amount: decimal.NewFromInt(30),
		},
	}

	var buf bytes.Buffer
	if err := WriteTransfersCSV(&buf, TransferRows(plan)); err != nil {
		t.Fatalf("WriteTransfersCSV failed: %v", err)
	}

	want := "from,to,amount\nBob,Alice,30.00\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}
