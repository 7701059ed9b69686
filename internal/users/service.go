package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when login email or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned when a registration field fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Service owns account lifecycle and the durable user record.
type Service struct {
	repo Repo
}

// NewService creates a user service backed by the given repo.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Skills:       []string{},
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the password and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		// Accounts created through an identity provider have no local password.
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpsertExternal stores an account authenticated by an external identity provider.
func (s *Service) UpsertExternal(ctx context.Context, username, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if username == "" {
		username = email
	}
	return s.repo.Upsert(ctx, &User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Skills:   []string{},
	})
}

// Get returns the account by id.
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Skills returns the stored skill list for the user, empty when unknown.
func (s *Service) Skills(ctx context.Context, userID string) ([]string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.Skills, nil
}

// SaveSkills replaces the user's skill list after a resume upload.
func (s *Service) SaveSkills(ctx context.Context, userID string, skills []string) error {
	return s.repo.UpdateSkills(ctx, userID, skills)
}

// AppendResults persists a finished session's answered questions.
func (s *Service) AppendResults(ctx context.Context, userID string, records []ResultRecord) error {
	return s.repo.AppendResults(ctx, userID, records)
}

// Results returns the user's interview history, newest first.
func (s *Service) Results(ctx context.Context, userID string, limit int) ([]ResultRecord, error) {
	return s.repo.ListResults(ctx, userID, limit)
}
