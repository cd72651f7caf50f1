package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for bill dates. Bills carry a date, not
// a timestamp.
const DateFormat = "2006-01-02"

// Bill represents one expense: a payer who advanced the money and the
// members who consumed it. Ower shares are weighted by each member's
// current weight at computation time, so the bill itself stores only
// member ids.
type Bill struct {
	// ID is the bill's identifier, unique within the store.
	ID int64

	// ProjectID is the project this bill belongs to.
	ProjectID string

	// What describes the expense.
	What string

	// PayerID is the member who paid.
	PayerID int64

	// Amount is the total paid, in the project currency. Always positive.
	Amount decimal.Decimal

	// Date is the day the expense happened (midnight UTC).
	Date time.Time

	// OriginalCurrency is the currency the amount was entered in. Either
	// the project currency or NoCurrency.
	OriginalCurrency string

	// OwerIDs are the members who consumed the expense. Never empty.
	OwerIDs []int64

	// CreatedAt is when the bill was recorded.
	CreatedAt time.Time
}

// NewBill validates and builds a bill. A zero date defaults to today.
// Whether the currency matches the project and whether payer and owers
// are project members is checked by the service layer, which has the
// project at hand.
func NewBill(projectID, what string, payerID int64, amount decimal.Decimal, date time.Time, currency string, owerIDs []int64) (*Bill, error) {
	what = strings.TrimSpace(what)
	if what == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidBill)
	}
	if len(what) > 256 {
		return nil, fmt.Errorf("%w: description exceeds 256 characters", ErrInvalidBill)
	}

	if payerID <= 0 {
		return nil, fmt.Errorf("%w: payer is required", ErrInvalidBill)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidBill)
	}

	if len(owerIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one ower is required", ErrInvalidBill)
	}
	seen := make(map[int64]bool, len(owerIDs))
	for _, id := range owerIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: ower id %d is invalid", ErrInvalidBill, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: ower %d listed twice", ErrInvalidBill, id)
		}
		seen[id] = true
	}

	if date.IsZero() {
		date = time.Now().UTC()
	}
	date = date.UTC().Truncate(24 * time.Hour)

	if currency == "" {
		currency = NoCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: currency must be a 3-letter ISO 4217 code", ErrInvalidBill)
	}

	return &Bill{
		ProjectID:        projectID,
		What:             what,
		PayerID:          payerID,
		Amount:           amount,
		Date:             date,
		OriginalCurrency: currency,
		OwerIDs:          owerIDs,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
