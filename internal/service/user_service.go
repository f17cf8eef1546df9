package service

import (
	"context"
	"errors"
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUsernameExists = &Error{Kind: ErrValidation, Message: "username already exists"}
)

type UserService interface {
	CreateUser(ctx context.Context, actor model.Actor, req CreateUserRequest) (*model.UserResponse, error)
	DeactivateUser(ctx context.Context, actor model.Actor, userID uuid.UUID) error
	ResetPassword(ctx context.Context, username, newPassword string) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"notblank"`
	Role     string `json:"role" validate:"required"`
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) CreateUser(ctx context.Context, actor model.Actor, req CreateUserRequest) (*model.UserResponse, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if !model.ValidRole(req.Role) {
		return nil, validationError("role must be admin or staff")
	}

	// 1. Check if username already exists
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fromRepo(err, "user")
	}

	// 2. Create user
	user := &model.User{
		Username: req.Username,
		Name:     req.Name,
		Role:     req.Role,
		IsActive: true,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID

	// 3. Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "failed to hash password", Err: err}
	}

	// 4. Save
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, fromRepo(err, "user")
	}

	resp := user.ToResponse()
	return &resp, nil
}

// DeactivateUser disables login for the account. Sales keep referencing it.
func (s *userService) DeactivateUser(ctx context.Context, actor model.Actor, userID uuid.UUID) error {
	if actor.ID == userID.String() {
		return validationError("cannot deactivate your own account")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fromRepo(err, "user")
	}
	user.IsActive = false
	user.UpdatedBy = actor.ID
	return fromRepo(s.users.Update(ctx, user), "user")
}

// ResetPassword sets a new password without knowing the old one. Used by the
// maintenance command.
func (s *userService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 6 {
		return validationError("password must be at least 6 characters")
	}
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fromRepo(err, "user")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return &Error{Kind: ErrStorage, Message: "failed to hash password", Err: err}
	}
	return fromRepo(s.users.UpdatePassword(ctx, user.ID, user.Password), "user")
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fromRepo(err, "user")
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "user")
	}
	response := user.ToResponse()
	return &response, nil
}
