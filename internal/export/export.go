// Package export renders a project's bills and settlement plan in
// portable formats. Rows carry member names rather than ids since the
// files leave the system.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/service"
)

// BillRow is one exported bill.
type BillRow struct {
	Date        string   `json:"date"`
	What        string   `json:"what"`
	Payer       string   `json:"payer"`
	PayerWeight float64  `json:"payer_weight"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Owers       []string `json:"owers"`
}

// TransferRow is one exported settlement step.
type TransferRow struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// BillRows flattens bills against the member list, newest bill first
// like the source listing.
func BillRows(bills []models.Bill, members []models.Member) []BillRow {
	byID := make(map[int64]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	name := func(id int64) string {
		if m, ok := byID[id]; ok {
			return m.Name
		}
		return fmt.Sprintf("#%d", id)
	}

	rows := make([]BillRow, 0, len(bills))
	for _, b := range bills {
		owers := make([]string, 0, len(b.OwerIDs))
		for _, id := range b.OwerIDs {
			owers = append(owers, name(id))
		}
		rows = append(rows, BillRow{
			Date:        b.Date.Format(models.DateFormat),
			What:        b.What,
			Payer:       name(b.PayerID),
			PayerWeight: byID[b.PayerID].Weight.InexactFloat64(),
			Amount:      b.Amount.InexactFloat64(),
			Currency:    b.OriginalCurrency,
			Owers:       owers,
		})
	}
	return rows
}

// TransferRows flattens a settlement plan.
func TransferRows(plan []service.Transfer) []TransferRow {
	rows := make([]TransferRow, 0, len(plan))
	for _, t := range plan {
		rows = append(rows, TransferRow{
			From:   t.From.Name,
			To:     t.To.Name,
			Amount: t.Amount.Round(2).InexactFloat64(),
		})
	}
	return rows
}

// WriteBillsCSV writes rows with a header line. Amounts are fixed to
// two decimals and owers joined with ", " inside one field.
func WriteBillsCSV(w io.Writer, rows []BillRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "what", "payer", "payer_weight", "amount", "currency", "owers"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Date,
			r.What,
			r.Payer,
			strconv.FormatFloat(r.PayerWeight, 'f', -1, 64),
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			r.Currency,
			strings.Join(r.Owers, ", "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransfersCSV writes a settlement plan with a header line.
func WriteTransfersCSV(w io.Writer, rows []TransferRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "amount"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.From, r.To, strconv.FormatFloat(r.Amount, 'f', 2, 64)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
