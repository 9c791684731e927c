package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/repository"
)

func seedIssue(t *testing.T, repo *IssueRepository, id, owner string, category domain.IssueCategory, status domain.IssueStatus, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Issue{
		ID:        id,
		Title:     "title " + id,
		Category:  category,
		Status:    status,
		CreatedBy: owner,
		Remarks:   []domain.Remark{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}))
}

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "a@x.edu"}))
	err := repo.Create(ctx, &domain.User{ID: "u2", Email: "a@x.edu"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	user, err := repo.GetByEmail(ctx, "a@x.edu")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	users, err := repo.GetByIDs(ctx, []string{"u1", "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestIssueRepositoryListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedIssue(t, repo, "i1", "alice", domain.CategoryWater, domain.IssueStatusOpen, base)
	seedIssue(t, repo, "i2", "alice", domain.CategoryWater, domain.IssueStatusResolved, base.Add(time.Minute))
	seedIssue(t, repo, "i3", "bob", domain.CategoryWater, domain.IssueStatusOpen, base.Add(2*time.Minute))
	seedIssue(t, repo, "i4", "bob", domain.CategoryInternet, domain.IssueStatusOpen, base.Add(3*time.Minute))

	all, err := repo.List(ctx, domain.IssueFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"i4", "i3", "i2", "i1"}, ids(all))

	water := domain.CategoryWater
	open := domain.IssueStatusOpen
	matched, err := repo.List(ctx, domain.IssueFilter{Category: &water, Status: &open})
	require.NoError(t, err)
	assert.Equal(t, []string{"i3", "i1"}, ids(matched))

	owner := "alice"
	mine, err := repo.List(ctx, domain.IssueFilter{OwnerID: &owner})
	require.NoError(t, err)
	assert.Equal(t, []string{"i2", "i1"}, ids(mine))

	lower := domain.IssueCategory("water")
	none, err := repo.List(ctx, domain.IssueFilter{Category: &lower})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIssueRepositoryConcurrentRemarksSurvive(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	seedIssue(t, repo, "i1", "alice", domain.CategoryWater, domain.IssueStatusOpen, time.Now().UTC())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.ApplyUpdate(ctx, "i1", domain.IssueUpdate{
				Remark:    &domain.Remark{Text: fmt.Sprintf("remark %d", n), AddedBy: "admin", AddedAt: time.Now().UTC()},
				UpdatedAt: time.Now().UTC(),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	issue, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, issue.Remarks, writers)

	seen := map[string]bool{}
	for _, remark := range issue.Remarks {
		seen[remark.Text] = true
	}
	for i := 0; i < writers; i++ {
		assert.True(t, seen[fmt.Sprintf("remark %d", i)])
	}
}

func TestIssueRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	seedIssue(t, repo, "i1", "alice", domain.CategoryWater, domain.IssueStatusOpen, time.Now().UTC())

	issue, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	issue.Status = domain.IssueStatusResolved
	issue.Remarks = append(issue.Remarks, domain.Remark{Text: "local only"})

	stored, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusOpen, stored.Status)
	assert.Empty(t, stored.Remarks)
}

func TestIssueRepositoryUpdatedAtNeverMovesBack(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seedIssue(t, repo, "i1", "alice", domain.CategoryWater, domain.IssueStatusOpen, created)

	applied, err := repo.ApplyUpdate(ctx, "i1", domain.IssueUpdate{UpdatedAt: created.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, created, applied.Issue.UpdatedAt)

	_, err = repo.ApplyUpdate(ctx, "missing", domain.IssueUpdate{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIssueRepositoryReportsReplacedStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	seedIssue(t, repo, "i1", "alice", domain.CategoryWater, domain.IssueStatusOpen, time.Now().UTC())

	progress := domain.IssueStatusInProgress
	applied, err := repo.ApplyUpdate(ctx, "i1", domain.IssueUpdate{Status: &progress, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusOpen, applied.PreviousStatus)
	assert.Equal(t, domain.IssueStatusInProgress, applied.Issue.Status)

	applied, err = repo.ApplyUpdate(ctx, "i1", domain.IssueUpdate{UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, applied.PreviousStatus)
	assert.Equal(t, domain.IssueStatusInProgress, applied.Issue.Status)
}

func ids(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.ID)
	}
	return out
}
