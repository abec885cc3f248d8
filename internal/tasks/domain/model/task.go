package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Task is a document of the tasks collection
type Task struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Completed   bool               `json:"completed" bson:"completed"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
}

// Document returns the fields as they will be stored. Title and UserID are
// omitted while unset so required-field checks can see them missing.
func (t *Task) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"description": t.Description,
		"completed":   t.Completed,
	}
	if t.Title != "" {
		doc["title"] = t.Title
	}
	if !t.UserID.IsZero() {
		doc["userId"] = t.UserID
	}
	return doc
}

// TaskPage is one page of a task listing
type TaskPage struct {
	Tasks []*Task `json:"tasks"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int64   `json:"total"`
}
