package mongodb

import (
	"context"
	"errors"
	"fmt"

	"tasky/internal/schema/domain/model"
	"tasky/internal/schema/domain/repository"
	"tasky/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// namespaceExistsCode is the server error code for createCollection on an existing name
const namespaceExistsCode = 48

// Database is the subset of *mongo.Database the catalog needs
type Database interface {
	Name() string
	ListCollectionSpecifications(ctx context.Context, filter interface{}, opts ...*options.ListCollectionsOptions) ([]*mongo.CollectionSpecification, error)
	CreateCollection(ctx context.Context, name string, opts ...*options.CreateCollectionOptions) error
}

// MongoCollectionCatalog implements repository.CollectionCatalog on MongoDB
type MongoCollectionCatalog struct {
	db     Database
	logger logger.Logger
}

var _ repository.CollectionCatalog = (*MongoCollectionCatalog)(nil)

// NewMongoCollectionCatalog creates a catalog over db
func NewMongoCollectionCatalog(db Database, log logger.Logger) *MongoCollectionCatalog {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MongoCollectionCatalog{
		db:     db,
		logger: log.WithComponent("mongo-collection-catalog"),
	}
}

// Inspect reports whether the collection exists and what validator it carries
func (c *MongoCollectionCatalog) Inspect(ctx context.Context, name string) (repository.CollectionState, error) {
	specs, err := c.db.ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return repository.CollectionState{}, fmt.Errorf("list collections: %w", err)
	}
	if len(specs) == 0 {
		return repository.CollectionState{}, nil
	}

	spec := specs[0]
	if spec.Type != "" && spec.Type != "collection" {
		c.logger.Warnf("%s.%s is a %s, not a collection", c.db.Name(), name, spec.Type)
		return repository.CollectionState{Exists: true, Opaque: true}, nil
	}

	rule, opaque, err := RuleFromOptions(spec.Options)
	if err != nil {
		return repository.CollectionState{}, err
	}
	return repository.CollectionState{
		Exists:     true,
		Validator:  rule,
		Opaque:     opaque,
		Unenforced: EnforcementFromOptions(spec.Options),
	}, nil
}

// CreateCollection creates name with the rule as a strict, erroring validator
func (c *MongoCollectionCatalog) CreateCollection(ctx context.Context, name string, rule model.ValidationRule) error {
	opts := options.CreateCollection().
		SetValidator(Validator(rule)).
		SetValidationLevel("strict").
		SetValidationAction("error")

	if err := c.db.CreateCollection(ctx, name, opts); err != nil {
		if isNamespaceExists(err) {
			return model.ErrCollectionExists
		}
		return err
	}

	c.logger.Debugf("Created %s.%s with %d required field(s)", c.db.Name(), name, len(rule.Required))
	return nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceExistsCode
	}
	return false
}
