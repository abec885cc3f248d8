package mongodb

import (
	"context"
	"errors"

	"tasky/internal/tasks/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTaskRepository implements TaskRepository on the tasks collection
type MongoTaskRepository struct {
	collection *mongo.Collection
}

// NewMongoTaskRepository creates a new tasks repository
func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{collection: db.Collection("tasks")}
}

// EnsureIndexes creates the owner index used by ListByUser
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_1"),
	})
	return err
}

// List returns one page of tasks in insertion order
func (r *MongoTaskRepository) List(ctx context.Context, skip, limit int64) ([]*model.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

// Count returns the number of tasks
func (r *MongoTaskRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// Create inserts task and sets its generated ID
func (r *MongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return translateWriteError(err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		task.ID = oid
	}
	return nil
}

// GetByID retrieves a task by ID
func (r *MongoTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	var task model.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListByUser returns the tasks owned by userID
func (r *MongoTaskRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Task, error) {
	return r.find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Update replaces title, description and completed
func (r *MongoTaskRepository) Update(ctx context.Context, task *model.Task) error {
	update := bson.M{"$set": bson.M{
		"title":       task.Title,
		"description": task.Description,
		"completed":   task.Completed,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": task.ID}, update)
	if err != nil {
		return translateWriteError(err)
	}
	if result.MatchedCount == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by ID
func (r *MongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (r *MongoTaskRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*model.Task, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := make([]*model.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
