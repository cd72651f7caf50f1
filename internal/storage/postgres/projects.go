package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// CreateProject persists a new project.
func (s *PostgresStore) CreateProject(ctx context.Context, project *models.Project) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO projects (id, name, contact_email, currency, code_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		project.ID, project.Name, project.ContactEmail, project.Currency, project.CodeHash, project.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", project.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by id.
func (s *PostgresStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	project := &models.Project{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, contact_email, currency, code_hash, created_at FROM projects WHERE id = $1",
		id,
	).Scan(&project.ID, &project.Name, &project.ContactEmail, &project.Currency, &project.CodeHash, &project.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// UpdateProject rewrites a project's mutable fields.
func (s *PostgresStore) UpdateProject(ctx context.Context, project *models.Project) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE projects SET name = $1, contact_email = $2, currency = $3, code_hash = $4 WHERE id = $5",
		project.Name, project.ContactEmail, project.Currency, project.CodeHash, project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %q: %w", project.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project with all its members and bills.
// Children are deleted before parents so foreign keys hold throughout.
func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM bill_owers WHERE bill_id IN (SELECT id FROM bills WHERE project_id = $1)", id,
	); err != nil {
		return fmt.Errorf("failed to delete bill owers: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM bills WHERE project_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete bills: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM members WHERE project_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %q: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
