package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/repository"
)

// IssueRepository is a map-backed repository.IssueRepository. Every write
// holds the lock for the whole read-modify-write, so remark appends never
// overwrite each other.
type IssueRepository struct {
	mu     sync.RWMutex
	issues map[string]*domain.Issue
}

func NewIssueRepository() *IssueRepository {
	return &IssueRepository{issues: make(map[string]*domain.Issue)}
}

func (r *IssueRepository) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.issues[issue.ID] = issue.Clone()
	return nil
}

func (r *IssueRepository) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return issue.Clone(), nil
}

func (r *IssueRepository) List(_ context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Issue{}
	for _, issue := range r.issues {
		if filter.Matches(issue) {
			result = append(result, *issue.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *IssueRepository) ApplyUpdate(_ context.Context, id string, update domain.IssueUpdate) (*domain.AppliedUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	previous := issue.Status
	issue.Apply(update)
	return &domain.AppliedUpdate{Issue: issue.Clone(), PreviousStatus: previous}, nil
}

// Ping always succeeds.
func (r *IssueRepository) Ping(context.Context) error { return nil }
