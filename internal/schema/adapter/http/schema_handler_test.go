package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	schemahttp "tasky/internal/schema/adapter/http"
	"tasky/internal/schema/adapter/security"
	"tasky/internal/schema/domain/model"
	"tasky/internal/schema/domain/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockSchemaUsecase struct {
	mock.Mock
}

func (m *mockSchemaUsecase) EnsureCollections(ctx context.Context, specs []model.CollectionSpec) (*model.Report, error) {
	args := m.Called(ctx, specs)
	if r, ok := args.Get(0).(*model.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSchemaUsecase) Plan(ctx context.Context, specs []model.CollectionSpec) (*model.Report, error) {
	args := m.Called(ctx, specs)
	if r, ok := args.Get(0).(*model.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type SchemaHTTPTestSuite struct {
	suite.Suite
	app         *fiber.App
	mockUsecase *mockSchemaUsecase
	token       string
}

func (s *SchemaHTTPTestSuite) SetupTest() {
	s.mockUsecase = &mockSchemaUsecase{}
	s.app = fiber.New()

	tokens, err := security.NewAdminTokenService("0123456789abcdef0123456789abcdef", "tasky-admin")
	require.NoError(s.T(), err)
	s.token, err = tokens.Issue("ops", time.Minute)
	require.NoError(s.T(), err)

	handler := schemahttp.NewSchemaHTTPHandler(s.mockUsecase, model.DefaultSpecs(), time.Second)
	handler.RegisterRoutes(s.app.Group("/api/v1"), tokens)
}

func (s *SchemaHTTPTestSuite) do(method, path string, authorized bool) (*http.Response, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req)
	require.NoError(s.T(), err)

	var body map[string]interface{}
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func (s *SchemaHTTPTestSuite) TestListSchema_RequiresToken() {
	resp, body := s.do("GET", "/api/v1/admin/schema", false)
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(s.T(), "Missing bearer token", body["error"])
	assert.Equal(s.T(), "AUTHENTICATION_ERROR", body["type"])
}

func (s *SchemaHTTPTestSuite) TestListSchema_InvalidToken() {
	req := httptest.NewRequest("GET", "/api/v1/admin/schema", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := s.app.Test(req)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(s.T(), "Invalid admin token", body["error"])
	assert.Equal(s.T(), "AUTHENTICATION_ERROR", body["type"])
}

func (s *SchemaHTTPTestSuite) TestListSchema() {
	resp, body := s.do("GET", "/api/v1/admin/schema", true)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.EqualValues(s.T(), 2, body["count"])

	collections := body["collections"].([]interface{})
	users := collections[0].(map[string]interface{})
	assert.Equal(s.T(), "users", users["name"])
	schema := users["validator"].(map[string]interface{})["$jsonSchema"].(map[string]interface{})
	assert.Equal(s.T(), "object", schema["bsonType"])
	props := schema["properties"].(map[string]interface{})
	assert.Equal(s.T(), "string", props["email"].(map[string]interface{})["bsonType"])
}

func TestListSchema_MatchesInstalledValidator(t *testing.T) {
	tokens, err := security.NewAdminTokenService("0123456789abcdef0123456789abcdef", "tasky-admin")
	require.NoError(t, err)
	token, err := tokens.Issue("ops", time.Minute)
	require.NoError(t, err)

	notes := model.CollectionSpec{
		Name:       "notes",
		FieldTypes: map[string]model.FieldType{"body": model.FieldTypeString},
	}
	app := fiber.New()
	schemahttp.NewSchemaHTTPHandler(&mockSchemaUsecase{}, []model.CollectionSpec{notes}, time.Second).
		RegisterRoutes(app, tokens)

	req := httptest.NewRequest("GET", "/admin/schema", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	entry := body["collections"].([]interface{})[0].(map[string]interface{})
	schema := entry["validator"].(map[string]interface{})["$jsonSchema"].(map[string]interface{})

	assert.NotContains(t, schema, "required")
	assert.Equal(t, []interface{}{}, entry["required"])
	prop := schema["properties"].(map[string]interface{})["body"].(map[string]interface{})
	assert.Equal(t, "string", prop["bsonType"])
}

func (s *SchemaHTTPTestSuite) TestBootstrap_AllSucceeded() {
	report := &model.Report{Results: []model.SpecResult{
		{Collection: "users", Outcome: model.OutcomeCreated},
		{Collection: "tasks", Outcome: model.OutcomeAlreadySatisfied},
	}}
	s.mockUsecase.On("EnsureCollections", mock.Anything, mock.Anything).Return(report, nil)

	resp, body := s.do("POST", "/api/v1/admin/schema/bootstrap", true)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), true, body["ok"])
	assert.Len(s.T(), body["results"], 2)
	s.mockUsecase.AssertExpectations(s.T())
}

func (s *SchemaHTTPTestSuite) TestBootstrap_PartialFailure() {
	conflict := &model.ValidationConflictError{Collection: "users", Reason: "required fields or field types differ"}
	report := &model.Report{Results: []model.SpecResult{
		{Collection: "users", Outcome: model.OutcomeConflict, Err: conflict, Error: conflict.Error()},
		{Collection: "tasks", Outcome: model.OutcomeCreated},
	}}
	s.mockUsecase.On("EnsureCollections", mock.Anything, mock.Anything).Return(report, report.Err())

	resp, body := s.do("POST", "/api/v1/admin/schema/bootstrap", true)
	assert.Equal(s.T(), http.StatusMultiStatus, resp.StatusCode)
	assert.Equal(s.T(), false, body["ok"])
	first := body["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(s.T(), "conflict", first["outcome"])
	assert.Contains(s.T(), first["error"], "conflicting validator")
}

func (s *SchemaHTTPTestSuite) TestBootstrap_LockHeld() {
	s.mockUsecase.On("EnsureCollections", mock.Anything, mock.Anything).
		Return(nil, errors.Join(errors.New("acquire bootstrap lock"), repository.ErrLockHeld))

	resp, _ := s.do("POST", "/api/v1/admin/schema/bootstrap", true)
	assert.Equal(s.T(), http.StatusConflict, resp.StatusCode)
}

func (s *SchemaHTTPTestSuite) TestBootstrap_DuplicateSpec() {
	s.mockUsecase.On("EnsureCollections", mock.Anything, mock.Anything).
		Return(nil, &model.DuplicateSpecError{Name: "users"})

	resp, _ := s.do("POST", "/api/v1/admin/schema/bootstrap", true)
	assert.Equal(s.T(), http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *SchemaHTTPTestSuite) TestPlan() {
	report := &model.Report{DryRun: true, Results: []model.SpecResult{
		{Collection: "users", Outcome: model.OutcomeWouldCreate},
		{Collection: "tasks", Outcome: model.OutcomeWouldCreate},
	}}
	s.mockUsecase.On("Plan", mock.Anything, mock.Anything).Return(report, nil)

	resp, body := s.do("GET", "/api/v1/admin/schema/plan", true)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), true, body["dryRun"])
}

func TestSchemaHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(SchemaHTTPTestSuite))
}
