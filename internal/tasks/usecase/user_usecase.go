package usecase

import (
	"context"
	"regexp"
	"strings"

	schemamodel "tasky/internal/schema/domain/model"
	sharederrors "tasky/internal/shared/errors"
	"tasky/internal/shared/logger"
	"tasky/internal/tasks/domain/model"
	"tasky/internal/tasks/domain/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserUsecaseInterface defines the user use cases
type UserUsecaseInterface interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PUT /users/:userId. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUsecase implements UserUsecaseInterface
type UserUsecase struct {
	repo   repository.UserRepository
	rule   schemamodel.ValidationRule
	logger logger.Logger
}

// NewUserUsecase creates a user usecase. rule is the users collection rule
// that new documents are checked against before they reach the server.
func NewUserUsecase(repo repository.UserRepository, rule schemamodel.ValidationRule, log logger.Logger) *UserUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &UserUsecase{repo: repo, rule: rule, logger: log.WithComponent("users")}
}

// ListUsers returns every user
func (uc *UserUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "user", "list")
	}
	return users, nil
}

// CreateUser validates the request, hashes the password and stores the user
func (uc *UserUsecase) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}

	if err := checkDocument(uc.rule, user.Document()); err != nil {
		return nil, err
	}
	if err := validateCredentials(user.Email, user.Password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, mapRepositoryError(err, "user", "create")
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"userId": user.ID.Hex()}).Info("User created")
	return user, nil
}

// GetUser returns the user with the given ID
func (uc *UserUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}

	user, err := uc.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, mapRepositoryError(err, "user", "get")
	}
	return user, nil
}

// UpdateUser applies the non-empty fields of req and returns the stored user
func (uc *UserUsecase) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}

	update := &model.User{
		ID:    oid,
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if update.Name == "" && update.Email == "" && req.Password == "" {
		return nil, sharederrors.NewValidationError("no fields to update")
	}

	verrs := sharederrors.NewValidationErrors()
	if update.Email != "" && !emailRegex.MatchString(update.Email) {
		verrs.Add("email", "invalid email format", update.Email)
	}
	if req.Password != "" {
		if msg := passwordProblem(req.Password); msg != "" {
			verrs.Add("password", msg, nil)
		}
	}
	if verrs.HasErrors() {
		return nil, verrs.ToAppError()
	}

	if req.Password != "" {
		if update.Password, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Update(ctx, update); err != nil {
		return nil, mapRepositoryError(err, "user", "update")
	}
	return uc.GetUser(ctx, id)
}

// DeleteUser removes the user with the given ID
func (uc *UserUsecase) DeleteUser(ctx context.Context, id string) error {
	oid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, oid); err != nil {
		return mapRepositoryError(err, "user", "delete")
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"userId": id}).Info("User deleted")
	return nil
}

func validateCredentials(email, password string) error {
	verrs := sharederrors.NewValidationErrors()
	if !emailRegex.MatchString(email) {
		verrs.Add("email", "invalid email format", email)
	}
	if msg := passwordProblem(password); msg != "" {
		verrs.Add("password", msg, nil)
	}
	if verrs.HasErrors() {
		return verrs.ToAppError()
	}
	return nil
}

func passwordProblem(password string) string {
	switch {
	case len(password) < minPasswordLength:
		return "password must be at least 8 characters"
	case len(password) > maxPasswordLength:
		return "password must be at most 72 bytes"
	default:
		return ""
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", sharederrors.NewInternalError("failed to hash password").WithCause(err)
	}
	return string(hash), nil
}
