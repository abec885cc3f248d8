package mongodb

import (
	"errors"
	"fmt"

	"tasky/internal/tasks/domain/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// documentValidationFailure is the server code for a write refused by a collection validator
const documentValidationFailure = 121

// translateWriteError maps driver write errors onto domain errors
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrEmailTaken
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(documentValidationFailure) {
		return fmt.Errorf("%w: %v", model.ErrDocumentRejected, err)
	}
	return err
}
