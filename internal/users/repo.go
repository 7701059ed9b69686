package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repo is the persistence boundary for users and their interview history.
type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Upsert creates the user if the email is unknown, otherwise refreshes the
	// username, and returns the stored row either way.
	Upsert(ctx context.Context, u *User) (*User, error)
	UpdateSkills(ctx context.Context, userID string, skills []string) error
	AppendResults(ctx context.Context, userID string, records []ResultRecord) error
	ListResults(ctx context.Context, userID string, limit int) ([]ResultRecord, error)
}
