package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCollectionExists is returned by catalogs when a create races with another writer
var ErrCollectionExists = errors.New("collection already exists")

// DuplicateSpecError means two specs in one batch share a name
type DuplicateSpecError struct {
	Name string
}

func (e *DuplicateSpecError) Error() string {
	return fmt.Sprintf("duplicate collection spec %q", e.Name)
}

// InvalidSpecError means a spec breaks its own invariants
type InvalidSpecError struct {
	Name   string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid collection spec %q: %s", e.Name, e.Reason)
}

// CollectionCreationError wraps a collaborator failure for one collection
type CollectionCreationError struct {
	Collection string
	Err        error
}

func (e *CollectionCreationError) Error() string {
	return fmt.Sprintf("create collection %q: %v", e.Collection, e.Err)
}

func (e *CollectionCreationError) Unwrap() error { return e.Err }

// ValidationConflictError means the collection exists with a validator that
// does not match the declared one. It is reported, never resolved.
type ValidationConflictError struct {
	Collection string
	Reason     string
	Diff       string
}

func (e *ValidationConflictError) Error() string {
	msg := fmt.Sprintf("collection %q has a conflicting validator", e.Collection)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// BootstrapError aggregates the per-collection failures of one run
type BootstrapError struct {
	Failures []error
}

func (e *BootstrapError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("schema bootstrap failed for %d collection(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *BootstrapError) Unwrap() []error { return e.Failures }

// DocumentValidationError lists the ways a document breaks a rule
type DocumentValidationError struct {
	Problems []string
}

func (e *DocumentValidationError) Error() string {
	return "document failed validation: " + strings.Join(e.Problems, "; ")
}
