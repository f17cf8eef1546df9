package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"
	"tobaku-pos/pkg/jwt"
)

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthorized, Message: "invalid username or password"}
	ErrUserInactive       = &Error{Kind: ErrUnauthorized, Message: "user account is inactive"}
	ErrInvalidToken       = &Error{Kind: ErrUnauthorized, Message: "invalid or expired token"}
	ErrWrongPassword      = &Error{Kind: ErrValidation, Message: "current password is incorrect"}
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"` // Flat privileges array for easy checking
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
	Actor      model.Actor        `json:"-"`
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// 1. Find user by username
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fromRepo(err, "user")
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Sign token with the role's privileges
	privileges := user.Privileges()
	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Name, user.Role, privileges)
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "failed to generate token", Err: err}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("update last login for %s: %v", user.Username, err)
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: privileges,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return validationError("new password must be at least 6 characters")
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fromRepo(err, "user")
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return &Error{Kind: ErrStorage, Message: "failed to hash new password", Err: err}
	}
	return fromRepo(s.users.UpdatePassword(ctx, user.ID, user.Password), "user")
}

// ValidateToken checks the signature and that the account still exists and
// is active. Privileges come from the current role, not the token.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fromRepo(err, "user")
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Privileges: user.Privileges(),
		Actor:      user.Actor(),
	}, nil
}
