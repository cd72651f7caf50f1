package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// CreateProject persists a new project.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *models.Project) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, contact_email, currency, code_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		project.ID, project.Name, project.ContactEmail, project.Currency, project.CodeHash, project.CreatedAt.Unix(),
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
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	project := &models.Project{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, contact_email, currency, code_hash, created_at FROM projects WHERE id = ?",
		id,
	).Scan(&project.ID, &project.Name, &project.ContactEmail, &project.Currency, &project.CodeHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	project.CreatedAt = time.Unix(createdAt, 0).UTC()
	return project, nil
}

// UpdateProject rewrites a project's mutable fields.
func (s *SQLiteStore) UpdateProject(ctx context.Context, project *models.Project) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, contact_email = ?, currency = ?, code_hash = ? WHERE id = ?",
		project.Name, project.ContactEmail, project.Currency, project.CodeHash, project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project %q: %w", project.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project with all its members and bills.
// Children are deleted before parents so foreign keys hold throughout.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM bill_owers WHERE bill_id IN (SELECT id FROM bills WHERE project_id = ?)", id,
	); err != nil {
		return fmt.Errorf("failed to delete bill owers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete bills: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM members WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project %q: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
