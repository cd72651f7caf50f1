package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/metrics"
	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// ErrCurrencyMismatch means a bill's currency is neither the project
// currency nor "no currency".
var ErrCurrencyMismatch = errors.New("bill currency must match the project currency")

// BillService manages a project's bills.
type BillService struct {
	store storage.Store
}

// NewBillService creates a BillService.
func NewBillService(store storage.Store) *BillService {
	return &BillService{store: store}
}

// BillParams carries the caller-supplied bill fields.
type BillParams struct {
	What     string
	PayerID  int64
	Amount   decimal.Decimal
	Date     time.Time
	Currency string
	OwerIDs  []int64
}

// Add records a new bill. The payer and every ower must be activated
// members of the project, and the currency must match the project's.
func (s *BillService) Add(ctx context.Context, projectID string, params BillParams) (*models.Bill, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	bill, err := models.NewBill(projectID, params.What, params.PayerID, params.Amount, params.Date, params.Currency, params.OwerIDs)
	if err != nil {
		return nil, err
	}

	if err := s.checkBill(ctx, project, bill); err != nil {
		return nil, err
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, err
	}

	metrics.BillsCreated.Inc()
	slog.Info("bill added", "project_id", projectID, "bill_id", bill.ID, "amount", bill.Amount)
	return bill, nil
}

// Get retrieves one bill of a project.
func (s *BillService) Get(ctx context.Context, projectID string, billID int64) (*models.Bill, error) {
	return s.store.GetBill(ctx, projectID, billID)
}

// List returns a project's bills, newest first.
func (s *BillService) List(ctx context.Context, projectID string) ([]models.Bill, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListBills(ctx, projectID)
}

// Update rewrites a bill under the same validation rules as Add.
func (s *BillService) Update(ctx context.Context, projectID string, billID int64, params BillParams) (*models.Bill, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	current, err := s.store.GetBill(ctx, projectID, billID)
	if err != nil {
		return nil, err
	}

	updated, err := models.NewBill(projectID, params.What, params.PayerID, params.Amount, params.Date, params.Currency, params.OwerIDs)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	if err := s.checkBill(ctx, project, updated); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBill(ctx, updated); err != nil {
		return nil, err
	}

	slog.Info("bill updated", "project_id", projectID, "bill_id", billID)
	return updated, nil
}

// Delete removes a bill.
func (s *BillService) Delete(ctx context.Context, projectID string, billID int64) error {
	if err := s.store.DeleteBill(ctx, projectID, billID); err != nil {
		return err
	}
	slog.Info("bill deleted", "project_id", projectID, "bill_id", billID)
	return nil
}

// checkBill enforces the cross-entity rules: currency agreement and
// activated membership for the payer and all owers.
func (s *BillService) checkBill(ctx context.Context, project *models.Project, bill *models.Bill) error {
	if bill.OriginalCurrency != models.NoCurrency && bill.OriginalCurrency != project.Currency {
		return fmt.Errorf("%w: %s is not %s", ErrCurrencyMismatch, bill.OriginalCurrency, project.Currency)
	}

	members, err := s.store.ListMembers(ctx, project.ID)
	if err != nil {
		return err
	}
	activated := make(map[int64]bool, len(members))
	for _, m := range members {
		activated[m.ID] = m.Activated
	}

	check := func(role string, id int64) error {
		active, ok := activated[id]
		if !ok {
			return fmt.Errorf("%s %d: %w", role, id, storage.ErrNotFound)
		}
		if !active {
			return fmt.Errorf("%s %d: %w", role, id, ErrMemberDeactivated)
		}
		return nil
	}

	if err := check("payer", bill.PayerID); err != nil {
		return err
	}
	for _, id := range bill.OwerIDs {
		if err := check("ower", id); err != nil {
			return err
		}
	}
	return nil
}
