package model

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrEmailTaken   = errors.New("email is already taken")
	// ErrDocumentRejected is returned when the collection validator refuses a write
	ErrDocumentRejected = errors.New("document failed collection validation")
)

// User is a document of the users collection. Password holds the bcrypt hash
// and is never serialised to clients.
type User struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
}

// Document returns the non-empty fields as they will be stored
func (u *User) Document() map[string]interface{} {
	doc := make(map[string]interface{}, 3)
	if u.Name != "" {
		doc["name"] = u.Name
	}
	if u.Email != "" {
		doc["email"] = u.Email
	}
	if u.Password != "" {
		doc["password"] = u.Password
	}
	return doc
}
