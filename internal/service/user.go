package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/todocal/internal/auth"
	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/store"
)

// RegisterInput is a new account request.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what a successful register or login returns.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserService registers accounts and exchanges credentials for tokens.
type UserService struct {
	users  store.UserStore
	tokens *auth.Tokens
}

func NewUserService(users store.UserStore, tokens *auth.Tokens) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates an account and signs the user in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}

	exists, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ConflictError{Message: "username already exists"}
	}
	exists, err = s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ConflictError{Message: "email already exists"}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("registering %q: %w", in.Username, err)
	}

	return s.session(user)
}

// Login verifies credentials. Every failure is ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// Me returns the profile of the authenticated user.
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UserByUsername looks an account up by name, for local tooling.
func (s *UserService) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

func (s *UserService) session(user *model.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Username: user.Username, Email: user.Email}, nil
}
