package usecase

import (
	"context"

	"tasky/internal/tasks/domain/model"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) List(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]*model.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) List(ctx context.Context, skip, limit int64) ([]*model.Task, error) {
	args := m.Called(ctx, skip, limit)
	if tasks, ok := args.Get(0).([]*model.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	if args.Error(0) == nil {
		task.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*model.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Task, error) {
	args := m.Called(ctx, userID)
	if tasks, ok := args.Get(0).([]*model.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}
