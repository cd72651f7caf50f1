package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/storage"
)

var (
	// ErrNameTaken means an activated member already carries the name.
	ErrNameTaken = errors.New("member name already in use")

	// ErrMemberDeactivated means a bill referenced a deactivated member.
	ErrMemberDeactivated = errors.New("member is deactivated")
)

// MemberService manages project membership.
type MemberService struct {
	store storage.Store
}

// NewMemberService creates a MemberService.
func NewMemberService(store storage.Store) *MemberService {
	return &MemberService{store: store}
}

// Add enrolls a member in a project. Adding a name that belongs to a
// deactivated member reactivates that member with the given weight,
// keeping their bill history attached.
func (s *MemberService) Add(ctx context.Context, projectID, name string, weight decimal.Decimal) (*models.Member, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	member, err := models.NewMember(projectID, name, weight)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetMemberByName(ctx, projectID, member.Name)
	switch {
	case err == nil && existing.Activated:
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, member.Name)
	case err == nil:
		existing.Activated = true
		existing.Weight = member.Weight
		if err := s.store.UpdateMember(ctx, existing); err != nil {
			return nil, err
		}
		slog.Info("member reactivated", "project_id", projectID, "member_id", existing.ID)
		return existing, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, err
	}

	slog.Info("member added", "project_id", projectID, "member_id", member.ID)
	return member, nil
}

// Get retrieves one member of a project.
func (s *MemberService) Get(ctx context.Context, projectID string, memberID int64) (*models.Member, error) {
	return s.store.GetMember(ctx, projectID, memberID)
}

// List returns all members of a project, activated first.
func (s *MemberService) List(ctx context.Context, projectID string) ([]models.Member, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, projectID)
}

// Update rewrites a member's name, weight, and activation flag.
func (s *MemberService) Update(ctx context.Context, projectID string, memberID int64, name string, weight decimal.Decimal, activated bool) (*models.Member, error) {
	current, err := s.store.GetMember(ctx, projectID, memberID)
	if err != nil {
		return nil, err
	}

	updated, err := models.NewMember(projectID, name, weight)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.Activated = activated

	if updated.Activated {
		other, err := s.store.GetMemberByName(ctx, projectID, updated.Name)
		if err == nil && other.ID != memberID && other.Activated {
			return nil, fmt.Errorf("%w: %q", ErrNameTaken, updated.Name)
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.store.UpdateMember(ctx, updated); err != nil {
		return nil, err
	}

	slog.Info("member updated", "project_id", projectID, "member_id", memberID)
	return updated, nil
}

// Remove takes a member out of a project. Members with no bill history
// are deleted outright; members referenced by any bill are deactivated
// instead so past bills stay intact. The returned flag is true when the
// member was deleted.
func (s *MemberService) Remove(ctx context.Context, projectID string, memberID int64) (bool, error) {
	member, err := s.store.GetMember(ctx, projectID, memberID)
	if err != nil {
		return false, err
	}

	hasBills, err := s.store.MemberHasBills(ctx, projectID, memberID)
	if err != nil {
		return false, err
	}

	if !hasBills {
		if err := s.store.DeleteMember(ctx, projectID, memberID); err != nil {
			return false, err
		}
		slog.Info("member deleted", "project_id", projectID, "member_id", memberID)
		return true, nil
	}

	member.Activated = false
	if err := s.store.UpdateMember(ctx, member); err != nil {
		return false, err
	}
	slog.Info("member deactivated", "project_id", projectID, "member_id", memberID)
	return false, nil
}
