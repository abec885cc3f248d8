package repository

import (
	"context"
	"errors"

	"tasky/internal/schema/domain/model"
)

// ErrLockHeld is returned when another process holds the bootstrap lock
var ErrLockHeld = errors.New("schema bootstrap lock is held by another process")

// CollectionState describes what the database currently has for a collection
type CollectionState struct {
	Exists bool
	// Validator is nil when the collection has no validator or one that
	// cannot be read back as a ValidationRule (see Opaque).
	Validator *model.ValidationRule
	// Opaque is set when a validator exists but is not a $jsonSchema document
	// built only from bsonType, required and properties.
	Opaque bool
	// Unenforced explains why the validator would not reject invalid
	// documents (a relaxed validation level or action). Empty when enforced.
	Unenforced string
}

// CollectionCatalog is the document database as seen by the bootstrapper
type CollectionCatalog interface {
	Inspect(ctx context.Context, name string) (CollectionState, error)
	CreateCollection(ctx context.Context, name string, rule model.ValidationRule) error
}

// Locker serialises bootstrap runs across processes
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
