package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	schemamongo "tasky/internal/schema/adapter/persistence/mongodb"
	schemamodel "tasky/internal/schema/domain/model"
	"tasky/internal/schema/usecase"
	"tasky/internal/shared/logger"
	"tasky/internal/tasks/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RepositoryIntegrationSuite struct {
	suite.Suite
	client   *mongo.Client
	database *mongo.Database
	users    *MongoUserRepository
	tasks    *MongoTaskRepository
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		s.T().Skip("MONGODB_TEST_URI not set; skipping MongoDB integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		s.T().Skip("MongoDB not available for testing")
	}
	if err := client.Ping(ctx, nil); err != nil {
		s.T().Skip("MongoDB not reachable for testing")
	}
	s.client = client
	s.database = client.Database("tasky_repo_it_" + primitive.NewObjectID().Hex())

	catalog := schemamongo.NewMongoCollectionCatalog(s.database, logger.NewNopLogger())
	_, err = usecase.NewSchemaBootstrapper(catalog, nil, logger.NewNopLogger(), usecase.BootstrapperConfig{}).
		EnsureCollections(ctx, schemamodel.DefaultSpecs())
	require.NoError(s.T(), err)

	s.users = NewMongoUserRepository(s.database)
	s.tasks = NewMongoTaskRepository(s.database)
	require.NoError(s.T(), s.users.EnsureIndexes(ctx))
	require.NoError(s.T(), s.tasks.EnsureIndexes(ctx))
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.database.Drop(context.Background())
		_ = s.client.Disconnect(context.Background())
	}
}

func (s *RepositoryIntegrationSuite) TestUserLifecycle() {
	ctx := context.Background()
	user := &model.User{Name: "Ada", Email: "ada@example.com", Password: "$2a$10$hash"}
	require.NoError(s.T(), s.users.Create(ctx, user))
	assert.False(s.T(), user.ID.IsZero())

	err := s.users.Create(ctx, &model.User{Name: "Other", Email: "ada@example.com", Password: "x"})
	assert.ErrorIs(s.T(), err, model.ErrEmailTaken)

	require.NoError(s.T(), s.users.Update(ctx, &model.User{ID: user.ID, Name: "Ada L."}))
	got, err := s.users.GetByID(ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Ada L.", got.Name)
	assert.Equal(s.T(), "ada@example.com", got.Email)

	require.NoError(s.T(), s.users.Delete(ctx, user.ID))
	_, err = s.users.GetByID(ctx, user.ID)
	assert.ErrorIs(s.T(), err, model.ErrUserNotFound)
	assert.ErrorIs(s.T(), s.users.Delete(ctx, user.ID), model.ErrUserNotFound)
}

func (s *RepositoryIntegrationSuite) TestTaskPagingAndOwner() {
	ctx := context.Background()
	owner := primitive.NewObjectID()
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(s.T(), s.tasks.Create(ctx, &model.Task{Title: title, UserID: owner}))
	}

	total, err := s.tasks.Count(ctx)
	require.NoError(s.T(), err)
	assert.GreaterOrEqual(s.T(), total, int64(3))

	page, err := s.tasks.List(ctx, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)

	owned, err := s.tasks.ListByUser(ctx, owner)
	require.NoError(s.T(), err)
	assert.Len(s.T(), owned, 3)

	owned[0].Completed = true
	require.NoError(s.T(), s.tasks.Update(ctx, owned[0]))
	got, err := s.tasks.GetByID(ctx, owned[0].ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Completed)
}

func (s *RepositoryIntegrationSuite) TestValidatorRejectionIsTranslated() {
	_, err := s.database.Collection("tasks").InsertOne(context.Background(), bson.M{"title": 42})
	assert.ErrorIs(s.T(), translateWriteError(err), model.ErrDocumentRejected)
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationSuite))
}
