package calculator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MemberRef identifies a member to the statistics computation.
type MemberRef struct {
	ID   int64
	Name string
}

// MemberStat is one row of a project's statistics table. Members with no
// bills get a zero row.
type MemberStat struct {
	MemberID int64
	Name     string
	Paid     decimal.Decimal
	Spent    decimal.Decimal
	Balance  decimal.Decimal
}

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// String renders the month as "2011-08".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// ComputeStats builds the statistics rows for the given members, ordered
// by name (case-insensitive, id on ties) so repeated renders are stable.
func ComputeStats(members []MemberRef, bills []Bill) ([]MemberStat, error) {
	balances, err := ComputeBalances(bills)
	if err != nil {
		return nil, err
	}

	stats := make([]MemberStat, 0, len(members))
	for _, m := range members {
		b := balances[m.ID]
		stats = append(stats, MemberStat{
			MemberID: m.ID,
			Name:     m.Name,
			Paid:     b.Paid,
			Spent:    b.Spent,
			Balance:  b.Net,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		ni, nj := strings.ToLower(stats[i].Name), strings.ToLower(stats[j].Name)
		if ni != nj {
			return ni < nj
		}
		return stats[i].MemberID < stats[j].MemberID
	})

	return stats, nil
}

// MonthlyTotals buckets total billed volume by bill date. Only months
// with at least one bill appear.
func MonthlyTotals(bills []Bill) map[int]map[time.Month]decimal.Decimal {
	totals := make(map[int]map[time.Month]decimal.Decimal)
	for _, bill := range bills {
		year, month := bill.Date.Year(), bill.Date.Month()
		if totals[year] == nil {
			totals[year] = make(map[time.Month]decimal.Decimal)
		}
		totals[year][month] = totals[year][month].Add(bill.Amount)
	}
	return totals
}

// ActiveMonths lists every month between the oldest and newest bill,
// inclusive and including months with no bills, newest first. No bills
// means no months.
func ActiveMonths(bills []Bill) []YearMonth {
	if len(bills) == 0 {
		return []YearMonth{}
	}

	oldest, newest := bills[0].Date, bills[0].Date
	for _, bill := range bills[1:] {
		if bill.Date.Before(oldest) {
			oldest = bill.Date
		}
		if bill.Date.After(newest) {
			newest = bill.Date
		}
	}

	months := []YearMonth{}
	cursor := time.Date(newest.Year(), newest.Month(), 1, 0, 0, 0, 0, time.UTC)
	floor := time.Date(oldest.Year(), oldest.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.Before(floor) {
		months = append(months, YearMonth{Year: cursor.Year(), Month: cursor.Month()})
		cursor = cursor.AddDate(0, -1, 0)
	}
	return months
}
