package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// CreateBill persists a new bill with its owers and populates bill.ID.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bills (project_id, what, payer_id, amount, bill_date, original_currency, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.ProjectID, bill.What, bill.PayerID, bill.Amount.String(),
		bill.Date.Format(models.DateFormat), bill.OriginalCurrency, bill.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read bill id: %w", err)
	}

	for _, memberID := range bill.OwerIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bill_owers (bill_id, member_id) VALUES (?, ?)",
			id, memberID,
		); err != nil {
			return fmt.Errorf("failed to insert bill ower: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	bill.ID = id
	return nil
}

// GetBill retrieves one bill of a project, owers included.
func (s *SQLiteStore) GetBill(ctx context.Context, projectID string, id int64) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, what, payer_id, amount, bill_date, original_currency, created_at FROM bills WHERE project_id = ? AND id = ?",
		projectID, id,
	)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM bill_owers WHERE bill_id = ? ORDER BY member_id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill owers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID int64
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan bill ower: %w", err)
		}
		bill.OwerIDs = append(bill.OwerIDs, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill owers: %w", err)
	}
	return bill, nil
}

// ListBills returns a project's bills, newest date first, owers included.
// Owers are fetched in one pass and merged in memory rather than queried
// per bill.
func (s *SQLiteStore) ListBills(ctx context.Context, projectID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, what, payer_id, amount, bill_date, original_currency, created_at FROM bills WHERE project_id = ? ORDER BY bill_date DESC, id DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []models.Bill{}
	index := map[int64]int{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		index[bill.ID] = len(bills)
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	if len(bills) == 0 {
		return bills, nil
	}

	owerRows, err := s.db.QueryContext(ctx,
		`SELECT bo.bill_id, bo.member_id FROM bill_owers bo
		 JOIN bills b ON b.id = bo.bill_id
		 WHERE b.project_id = ? ORDER BY bo.bill_id, bo.member_id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill owers: %w", err)
	}
	defer owerRows.Close()

	for owerRows.Next() {
		var billID, memberID int64
		if err := owerRows.Scan(&billID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan bill ower: %w", err)
		}
		if i, ok := index[billID]; ok {
			bills[i].OwerIDs = append(bills[i].OwerIDs, memberID)
		}
	}
	if err := owerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill owers: %w", err)
	}
	return bills, nil
}

// UpdateBill rewrites a bill and replaces its ower set.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET what = ?, payer_id = ?, amount = ?, bill_date = ?, original_currency = ? WHERE project_id = ? AND id = ?",
		bill.What, bill.PayerID, bill.Amount.String(), bill.Date.Format(models.DateFormat),
		bill.OriginalCurrency, bill.ProjectID, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("bill %d: %w", bill.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_owers WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to clear bill owers: %w", err)
	}
	for _, memberID := range bill.OwerIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bill_owers (bill_id, member_id) VALUES (?, ?)",
			bill.ID, memberID,
		); err != nil {
			return fmt.Errorf("failed to insert bill ower: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBill removes a bill and its owers.
func (s *SQLiteStore) DeleteBill(ctx context.Context, projectID string, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_owers WHERE bill_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete bill owers: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE project_id = ? AND id = ?", projectID, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("bill %d: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var amount, billDate string
	var createdAt int64
	if err := row.Scan(&bill.ID, &bill.ProjectID, &bill.What, &bill.PayerID,
		&amount, &billDate, &bill.OriginalCurrency, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}

	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bill amount %q: %w", amount, err)
	}
	bill.Amount = a

	date, err := time.ParseInLocation(models.DateFormat, billDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bill date %q: %w", billDate, err)
	}
	bill.Date = date
	bill.CreatedAt = time.Unix(createdAt, 0).UTC()
	return bill, nil
}
