package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// NoCurrency is the ISO 4217 placeholder code for projects that do not
// track a currency.
const NoCurrency = "XXX"

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Project represents one expense ledger. Members, bills, and every
// derived view (balances, statistics, settlement plan) are scoped to a
// single project.
type Project struct {
	// ID is the unique URL-safe identifier for the project.
	// Chosen by the creator, or derived from the name when omitted.
	ID string

	// Name is the display name of the project.
	Name string

	// ContactEmail is an optional contact address for the project.
	ContactEmail string

	// Currency is the ISO 4217 code bills are denominated in, or
	// NoCurrency when the project does not track one.
	Currency string

	// CodeHash is the bcrypt hash of the project's shared private code.
	// The clear code is never stored.
	CodeHash string

	// CreatedAt is when the project was created.
	CreatedAt time.Time
}

// NewProject validates and builds a project. An empty id is derived from
// the name. codeHash must already be hashed; this constructor never sees
// the clear code.
func NewProject(id, name, contactEmail, currency, codeHash string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	if len(name) > 128 {
		return nil, fmt.Errorf("%w: name exceeds 128 characters", ErrInvalidProject)
	}

	if id == "" {
		id = Slugify(name)
	}
	if !slugPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: id must be 1-64 lowercase letters, digits or hyphens", ErrInvalidProject)
	}

	if contactEmail != "" && !strings.Contains(contactEmail, "@") {
		return nil, fmt.Errorf("%w: contact email is malformed", ErrInvalidProject)
	}

	if currency == "" {
		currency = NoCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: currency must be a 3-letter ISO 4217 code", ErrInvalidProject)
	}

	if codeHash == "" {
		return nil, fmt.Errorf("%w: private code is required", ErrInvalidProject)
	}

	return &Project{
		ID:           id,
		Name:         name,
		ContactEmail: contactEmail,
		Currency:     currency,
		CodeHash:     codeHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

var slugScrub = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display name into a project identifier: lowercased,
// runs of non-alphanumeric characters collapsed to single hyphens.
func Slugify(name string) string {
	s := slugScrub.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > 64 {
		s = strings.Trim(s[:64], "-")
	}
	return s
}
