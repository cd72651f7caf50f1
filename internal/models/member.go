package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinWeight is the smallest consumption weight a member may carry.
var MinWeight = decimal.NewFromFloat(0.1)

// Member represents a participant in a project. A member's weight scales
// their share of every bill they appear on; changing it re-weights
// historical bills too.
type Member struct {
	// ID is the member's identifier, unique within the store.
	ID int64

	// ProjectID is the project this member belongs to.
	ProjectID string

	// Name is the member's display name, unique among the project's
	// activated members.
	Name string

	// Weight scales the member's share of bills. Defaults to 1.
	Weight decimal.Decimal

	// Activated is false for members that were removed while still
	// referenced by bills. Deactivated members keep their history but
	// cannot be added to new bills.
	Activated bool
}

// NewMember validates and builds an activated member. A zero weight
// defaults to 1.
func NewMember(projectID, name string, weight decimal.Decimal) (*Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	if len(name) > 128 {
		return nil, fmt.Errorf("%w: name exceeds 128 characters", ErrInvalidMember)
	}

	if weight.IsZero() {
		weight = decimal.NewFromInt(1)
	}
	if weight.LessThan(MinWeight) {
		return nil, fmt.Errorf("%w: weight must be at least %s", ErrInvalidMember, MinWeight)
	}

	return &Member{
		ProjectID: projectID,
		Name:      name,
		Weight:    weight,
		Activated: true,
	}, nil
}
