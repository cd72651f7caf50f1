package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// CreateMember persists a new member and populates member.ID.
func (s *PostgresStore) CreateMember(ctx context.Context, member *models.Member) error {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO members (project_id, name, weight, activated) VALUES ($1, $2, $3::numeric, $4) RETURNING id",
		member.ProjectID, member.Name, member.Weight.String(), member.Activated,
	).Scan(&member.ID)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves one member of a project.
func (s *PostgresStore) GetMember(ctx context.Context, projectID string, id int64) (*models.Member, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, project_id, name, weight::text, activated FROM members WHERE project_id = $1 AND id = $2",
		projectID, id,
	)
	member, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", id, storage.ErrNotFound)
	}
	return member, err
}

// GetMemberByName finds a project's member by exact name, preferring an
// activated match.
func (s *PostgresStore) GetMemberByName(ctx context.Context, projectID, name string) (*models.Member, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, project_id, name, weight::text, activated FROM members WHERE project_id = $1 AND name = $2 ORDER BY activated DESC, id DESC LIMIT 1",
		projectID, name,
	)
	member, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %q: %w", name, storage.ErrNotFound)
	}
	return member, err
}

// ListMembers returns all members of a project, activated first, then by
// name.
func (s *PostgresStore) ListMembers(ctx context.Context, projectID string) ([]models.Member, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, project_id, name, weight::text, activated FROM members WHERE project_id = $1 ORDER BY activated DESC, LOWER(name), id",
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
func (s *PostgresStore) UpdateMember(ctx context.Context, member *models.Member) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE members SET name = $1, weight = $2::numeric, activated = $3 WHERE project_id = $4 AND id = $5",
		member.Name, member.Weight.String(), member.Activated, member.ProjectID, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %d: %w", member.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteMember removes a member outright.
func (s *PostgresStore) DeleteMember(ctx context.Context, projectID string, id int64) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM members WHERE project_id = $1 AND id = $2",
		projectID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// MemberHasBills reports whether the member pays for or owes any bill.
func (s *PostgresStore) MemberHasBills(ctx context.Context, projectID string, id int64) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bills b
		 LEFT JOIN bill_owers bo ON bo.bill_id = b.id
		 WHERE b.project_id = $1 AND (b.payer_id = $2 OR bo.member_id = $2)`,
		projectID, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count member bills: %w", err)
	}
	return count > 0, nil
}

func scanMember(row scanner) (*models.Member, error) {
	member := &models.Member{}
	var weight string
	if err := row.Scan(&member.ID, &member.ProjectID, &member.Name, &weight, &member.Activated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
