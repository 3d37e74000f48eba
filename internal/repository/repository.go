// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("record conflicts with an existing one")
	// ErrFarmClaimed is the ErrConflict returned when a FINCA grant names a
	// farm that already has a PENDING or APPROVED FINCA grant.
	ErrFarmClaimed = fmt.Errorf("%w: farm already has a live FINCA grant", ErrConflict)
	// ErrStaleState is returned by guarded transitions when the row exists
	// but is no longer in the expected state.
	ErrStaleState = errors.New("record is not in the expected state")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
