package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"tasky/internal/schema/adapter/persistence/mongodb"
	"tasky/internal/schema/domain/model"
	"tasky/internal/schema/usecase"
	"tasky/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CatalogIntegrationSuite struct {
	suite.Suite
	client   *mongo.Client
	database *mongo.Database
}

func (s *CatalogIntegrationSuite) SetupSuite() {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		s.T().Skip("MONGODB_TEST_URI not set; skipping MongoDB integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		s.T().Skip("MongoDB not available for testing")
	}
	if err := client.Ping(ctx, nil); err != nil {
		s.T().Skip("MongoDB not reachable for testing")
	}

	s.client = client
	s.database = client.Database("tasky_schema_it_" + primitive.NewObjectID().Hex())
}

func (s *CatalogIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.database.Drop(context.Background())
		_ = s.client.Disconnect(context.Background())
	}
}

func (s *CatalogIntegrationSuite) TestBootstrapTwiceAndEnforce() {
	ctx := context.Background()
	catalog := mongodb.NewMongoCollectionCatalog(s.database, logger.NewNopLogger())
	b := usecase.NewSchemaBootstrapper(catalog, nil, logger.NewNopLogger(), usecase.BootstrapperConfig{})

	report, err := b.EnsureCollections(ctx, model.DefaultSpecs())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, report.Count(model.OutcomeCreated))

	report, err = b.EnsureCollections(ctx, model.DefaultSpecs())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, report.Count(model.OutcomeAlreadySatisfied))

	_, err = s.database.Collection("tasks").InsertOne(ctx, bson.M{"title": "no owner"})
	assert.Error(s.T(), err, "validator must reject a task without userId")

	_, err = s.database.Collection("tasks").InsertOne(ctx, bson.M{"title": "ok", "userId": primitive.NewObjectID()})
	assert.NoError(s.T(), err)
}

func (s *CatalogIntegrationSuite) TestConflictingValidatorIsReported() {
	ctx := context.Background()
	err := s.database.CreateCollection(ctx, "legacy_users", options.CreateCollection().SetValidator(bson.M{
		"$jsonSchema": bson.M{"bsonType": "object", "required": bson.A{"email"}},
	}))
	require.NoError(s.T(), err)

	spec := model.UsersSpec()
	spec.Name = "legacy_users"

	catalog := mongodb.NewMongoCollectionCatalog(s.database, nil)
	report, err := usecase.NewSchemaBootstrapper(catalog, nil, nil, usecase.BootstrapperConfig{}).
		EnsureCollections(ctx, []model.CollectionSpec{spec})

	var conflict *model.ValidationConflictError
	require.ErrorAs(s.T(), err, &conflict)
	assert.Equal(s.T(), model.OutcomeConflict, report.Results[0].Outcome)
}

func TestCatalogIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationSuite))
}
