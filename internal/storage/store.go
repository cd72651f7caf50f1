// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/divvykit/divvy/internal/models"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation, such as reusing a
	// project id.
	ErrConflict = errors.New("already exists")
)

// Store defines the interface for project persistence. The sqlite and
// postgres backends both implement it, so the service layer never knows
// which database is underneath.
//
// Every method scoped by projectID only sees that project's rows;
// cross-project access is impossible by construction.
type Store interface {
	// CreateProject persists a new project. Returns ErrConflict if the
	// id is taken.
	CreateProject(ctx context.Context, project *models.Project) error

	// GetProject retrieves a project by id. Returns ErrNotFound if absent.
	GetProject(ctx context.Context, id string) (*models.Project, error)

	// UpdateProject rewrites a project's mutable fields.
	UpdateProject(ctx context.Context, project *models.Project) error

	// DeleteProject removes a project with all its members and bills.
	DeleteProject(ctx context.Context, id string) error

	// CreateMember persists a new member and populates member.ID.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves one member of a project.
	GetMember(ctx context.Context, projectID string, id int64) (*models.Member, error)

	// GetMemberByName finds a project's member by exact name. When both
	// an activated and deactivated member carry the name, the activated
	// one wins.
	GetMemberByName(ctx context.Context, projectID, name string) (*models.Member, error)

	// ListMembers returns all members of a project, activated first,
	// then by name.
	ListMembers(ctx context.Context, projectID string) ([]models.Member, error)

	// UpdateMember rewrites a member's name, weight, and activation.
	UpdateMember(ctx context.Context, member *models.Member) error

	// DeleteMember removes a member outright. Callers must check
	// MemberHasBills first; members with bills are deactivated instead.
	DeleteMember(ctx context.Context, projectID string, id int64) error

	// MemberHasBills reports whether the member pays for or owes any bill.
	MemberHasBills(ctx context.Context, projectID string, id int64) (bool, error)

	// CreateBill persists a new bill with its owers and populates bill.ID.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves one bill of a project, owers included.
	GetBill(ctx context.Context, projectID string, id int64) (*models.Bill, error)

	// ListBills returns a project's bills, newest date first, owers
	// included.
	ListBills(ctx context.Context, projectID string) ([]models.Bill, error)

	// UpdateBill rewrites a bill and replaces its ower set.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and its owers.
	DeleteBill(ctx context.Context, projectID string, id int64) error

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
