package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// CreateBill persists a new bill with its owers and populates bill.ID.
func (s *PostgresStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO bills (project_id, what, payer_id, amount, bill_date, original_currency, created_at)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7) RETURNING id`,
		bill.ProjectID, bill.What, bill.PayerID, bill.Amount.String(),
		bill.Date, bill.OriginalCurrency, bill.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for _, memberID := range bill.OwerIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO bill_owers (bill_id, member_id) VALUES ($1, $2)",
			id, memberID,
		); err != nil {
			return fmt.Errorf("failed to insert bill ower: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	bill.ID = id
	return nil
}

// GetBill retrieves one bill of a project, owers included.
func (s *PostgresStore) GetBill(ctx context.Context, projectID string, id int64) (*models.Bill, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, project_id, what, payer_id, amount::text, bill_date, original_currency, created_at FROM bills WHERE project_id = $1 AND id = $2",
		projectID, id,
	)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bill %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		"SELECT member_id FROM bill_owers WHERE bill_id = $1 ORDER BY member_id",
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
func (s *PostgresStore) ListBills(ctx context.Context, projectID string) ([]models.Bill, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, project_id, what, payer_id, amount::text, bill_date, original_currency, created_at FROM bills WHERE project_id = $1 ORDER BY bill_date DESC, id DESC",
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

	owerRows, err := s.pool.Query(ctx,
		`SELECT bo.bill_id, bo.member_id FROM bill_owers bo
		 JOIN bills b ON b.id = bo.bill_id
		 WHERE b.project_id = $1 ORDER BY bo.bill_id, bo.member_id`,
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
func (s *PostgresStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE bills SET what = $1, payer_id = $2, amount = $3::numeric, bill_date = $4, original_currency = $5 WHERE project_id = $6 AND id = $7",
		bill.What, bill.PayerID, bill.Amount.String(), bill.Date,
		bill.OriginalCurrency, bill.ProjectID, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bill %d: %w", bill.ID, storage.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM bill_owers WHERE bill_id = $1", bill.ID); err != nil {
		return fmt.Errorf("failed to clear bill owers: %w", err)
	}
	for _, memberID := range bill.OwerIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO bill_owers (bill_id, member_id) VALUES ($1, $2)",
			bill.ID, memberID,
		); err != nil {
			return fmt.Errorf("failed to insert bill ower: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBill removes a bill and its owers.
func (s *PostgresStore) DeleteBill(ctx context.Context, projectID string, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM bill_owers WHERE bill_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete bill owers: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM bills WHERE project_id = $1 AND id = $2", projectID, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bill %d: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var amount string
	var billDate, createdAt time.Time
	if err := row.Scan(&bill.ID, &bill.ProjectID, &bill.What, &bill.PayerID,
		&amount, &billDate, &bill.OriginalCurrency, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}

	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bill amount %q: %w", amount, err)
	}
	bill.Amount = a
	bill.Date = time.Date(billDate.Year(), billDate.Month(), billDate.Day(), 0, 0, 0, 0, time.UTC)
	bill.CreatedAt = createdAt.UTC()
	return bill, nil
}
