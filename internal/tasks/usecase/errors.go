package usecase

import (
	"errors"

	schemamodel "tasky/internal/schema/domain/model"
	sharederrors "tasky/internal/shared/errors"
	"tasky/internal/tasks/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID converts a path parameter into an ObjectID
func parseID(id, resource string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, sharederrors.NewValidationError("invalid "+resource+" id").
			WithCode("INVALID_ID").
			WithCause(sharederrors.ErrInvalidID).
			WithDetail("id", id)
	}
	return oid, nil
}

// checkDocument runs the collection rule against doc before it is written
func checkDocument(rule schemamodel.ValidationRule, doc map[string]interface{}) error {
	err := rule.Check(doc)
	if err == nil {
		return nil
	}

	var docErr *schemamodel.DocumentValidationError
	if errors.As(err, &docErr) {
		verrs := sharederrors.NewValidationErrors()
		for _, problem := range docErr.Problems {
			verrs.Add("document", problem, nil)
		}
		return verrs.ToAppError()
	}
	return sharederrors.NewValidationError(err.Error())
}

// mapRepositoryError turns repository errors into AppErrors
func mapRepositoryError(err error, resource, action string) error {
	switch {
	case errors.Is(err, model.ErrUserNotFound), errors.Is(err, model.ErrTaskNotFound):
		return sharederrors.NewNotFoundError(resource)
	case errors.Is(err, model.ErrEmailTaken):
		return sharederrors.NewConflictError(model.ErrEmailTaken.Error()).WithCause(err)
	case errors.Is(err, model.ErrDocumentRejected):
		return sharederrors.NewValidationError(model.ErrDocumentRejected.Error()).WithCause(err)
	default:
		return sharederrors.WrapError(err, "failed to "+action+" "+resource).WithComponent("tasks")
	}
}
