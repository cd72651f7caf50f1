package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// CreateMember persists a new member and populates member.ID.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO members (project_id, name, weight, activated) VALUES (?, ?, ?, ?)",
		member.ProjectID, member.Name, member.Weight.String(), member.Activated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	member.ID = id
	return nil
}

// GetMember retrieves one member of a project.
func (s *SQLiteStore) GetMember(ctx context.Context, projectID string, id int64) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, name, weight, activated FROM members WHERE project_id = ? AND id = ?",
		projectID, id,
	)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", id, storage.ErrNotFound)
	}
	return member, err
}

// GetMemberByName finds a project's member by exact name, preferring an
// activated match.
func (s *SQLiteStore) GetMemberByName(ctx context.Context, projectID, name string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, name, weight, activated FROM members WHERE project_id = ? AND name = ? ORDER BY activated DESC, id DESC LIMIT 1",
		projectID, name,
	)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %q: %w", name, storage.ErrNotFound)
	}
	return member, err
}

// ListMembers returns all members of a project, activated first, then by
// name.
func (s *SQLiteStore) ListMembers(ctx context.Context, projectID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, name, weight, activated FROM members WHERE project_id = ? ORDER BY activated DESC, LOWER(name), id",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpdateMember rewrites a member's name, weight, and activation.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member *models.Member) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET name = ?, weight = ?, activated = ? WHERE project_id = ? AND id = ?",
		member.Name, member.Weight.String(), member.Activated, member.ProjectID, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member %d: %w", member.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteMember removes a member outright.
func (s *SQLiteStore) DeleteMember(ctx context.Context, projectID string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM members WHERE project_id = ? AND id = ?",
		projectID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// MemberHasBills reports whether the member pays for or owes any bill.
func (s *SQLiteStore) MemberHasBills(ctx context.Context, projectID string, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills b
		 LEFT JOIN bill_owers bo ON bo.bill_id = b.id
		 WHERE b.project_id = ? AND (b.payer_id = ? OR bo.member_id = ?)`,
		projectID, id, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count member bills: %w", err)
	}
	return count > 0, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*models.Member, error) {
	member := &models.Member{}
	var weight string
	if err := row.Scan(&member.ID, &member.ProjectID, &member.Name, &weight, &member.Activated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	w, err := decimal.NewFromString(weight)
	if err != nil {
		return nil, fmt.Errorf("failed to parse member weight %q: %w", weight, err)
	}
	member.Weight = w
	return member, nil
}
