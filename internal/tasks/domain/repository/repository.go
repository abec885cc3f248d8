package repository

import (
	"context"

	"tasky/internal/tasks/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository persists users
type UserRepository interface {
	List(ctx context.Context) ([]*model.User, error)
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	// Update sets the non-empty fields of user on the stored document
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TaskRepository persists tasks
type TaskRepository interface {
	List(ctx context.Context, skip, limit int64) ([]*model.Task, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Task, error)
	// Update replaces title, description and completed. The owner never changes.
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
