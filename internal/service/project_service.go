// Package service orchestrates domain operations over a storage.Store.
// Services validate input through the model constructors, keep
// cross-entity rules (name uniqueness, membership checks), and leave
// HTTP concerns to the api package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/divvykit/divvy/internal/auth"
	"github.com/divvykit/divvy/internal/metrics"
	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

// ProjectService manages project lifecycle and authentication.
type ProjectService struct {
	store  storage.Store
	codec  *auth.Codec
	tokens *auth.TokenManager
}

// NewProjectService creates a ProjectService.
func NewProjectService(store storage.Store, codec *auth.Codec, tokens *auth.TokenManager) *ProjectService {
	return &ProjectService{store: store, codec: codec, tokens: tokens}
}

// ProjectParams carries the caller-supplied project fields.
type ProjectParams struct {
	// ID is optional; when empty it is derived from Name.
	ID           string
	Name         string
	ContactEmail string
	// Currency is optional; empty means no currency ("XXX").
	Currency string
	// PrivateCode is required on create. On update an empty code keeps
	// the current one.
	PrivateCode string
}

// Create registers a new project with a hashed private code.
func (s *ProjectService) Create(ctx context.Context, params ProjectParams) (*models.Project, error) {
	codeHash, err := s.codec.Hash(params.PrivateCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidProject, err)
	}

	project, err := models.NewProject(params.ID, params.Name, params.ContactEmail, params.Currency, codeHash)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	metrics.ProjectsCreated.Inc()
	slog.Info("project created", "project_id", project.ID, "currency", project.Currency)
	return project, nil
}

// Get retrieves a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.store.GetProject(ctx, id)
}

// Update rewrites a project's name, contact email, currency, and
// optionally its private code. An empty currency keeps the current one.
func (s *ProjectService) Update(ctx context.Context, id string, params ProjectParams) (*models.Project, error) {
	current, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	codeHash := current.CodeHash
	if params.PrivateCode != "" {
		codeHash, err = s.codec.Hash(params.PrivateCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidProject, err)
		}
	}

	currency := params.Currency
	if currency == "" {
		currency = current.Currency
	}

	// Revalidate through the constructor, then keep identity fields.
	updated, err := models.NewProject(current.ID, params.Name, params.ContactEmail, currency, codeHash)
	if err != nil {
		return nil, err
	}
	updated.CreatedAt = current.CreatedAt

	if err := s.store.UpdateProject(ctx, updated); err != nil {
		return nil, err
	}

	slog.Info("project updated", "project_id", id)
	return updated, nil
}

// Delete removes a project and everything in it.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	slog.Info("project deleted", "project_id", id)
	return nil
}

// Authenticate checks a project id and private code pair. A missing
// project and a wrong code are indistinguishable to the caller.
func (s *ProjectService) Authenticate(ctx context.Context, id, code string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.codec.Verify(project.CodeHash, code); err != nil {
		return nil, err
	}
	return project, nil
}

// IssueToken mints a bearer token for an existing project.
func (s *ProjectService) IssueToken(ctx context.Context, id string) (string, error) {
	if _, err := s.store.GetProject(ctx, id); err != nil {
		return "", err
	}
	return s.tokens.Issue(id)
}
