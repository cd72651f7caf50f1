package models

import "errors"

var (
	// ErrInvalidProject indicates a project failed field validation.
	ErrInvalidProject = errors.New("invalid project")

	// ErrInvalidMember indicates a member failed field validation.
	ErrInvalidMember = errors.New("invalid member")

	// ErrInvalidBill indicates a bill failed field validation.
	ErrInvalidBill = errors.New("invalid bill")
)
