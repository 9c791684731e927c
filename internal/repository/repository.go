package repository

import (
	"context"
	"errors"

	"github.com/campus-fixit/issue-service/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	// List returns matching issues newest first by creation time.
	List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error)
	// ApplyUpdate sets the status and appends the remark in one atomic write
	// and returns the stored result with the status it replaced.
	ApplyUpdate(ctx context.Context, id string, update domain.IssueUpdate) (*domain.AppliedUpdate, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
