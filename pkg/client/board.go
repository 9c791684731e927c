package client

import (
	"context"
	"sync"
)

// BoardScope selects which listing a board shows.
type BoardScope int

const (
	// ScopeMine shows the student's own issues.
	ScopeMine BoardScope = iota
	// ScopeAll shows every issue; admin only.
	ScopeAll
)

// IssueBoard holds the issue list a user is looking at. Every mutation is
// followed by a refetch, so the board only ever shows server state.
type IssueBoard struct {
	client *Client
	scope  BoardScope

	mu     sync.RWMutex
	filter Filter
	issues []Issue
}

func NewIssueBoard(c *Client, scope BoardScope) *IssueBoard {
	return &IssueBoard{client: c, scope: scope}
}

// Issues returns a snapshot of the current list.
func (b *IssueBoard) Issues() []Issue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Issue(nil), b.issues...)
}

// Filter returns the filter the board was last loaded with.
func (b *IssueBoard) Filter() Filter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// Load replaces the filter and refetches.
func (b *IssueBoard) Load(ctx context.Context, filter Filter) error {
	b.mu.Lock()
	b.filter = filter
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// Refresh refetches the list with the current filter.
func (b *IssueBoard) Refresh(ctx context.Context) error {
	filter := b.Filter()

	var (
		list *IssueList
		err  error
	)
	switch {
	case b.scope == ScopeAll:
		list, err = b.client.AdminListIssues(ctx, filter)
	case filter == (Filter{}):
		list, err = b.client.MyIssues(ctx)
	default:
		list, err = b.client.ListIssues(ctx, filter)
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.issues = list.Issues
	b.mu.Unlock()
	return nil
}

// Create reports an issue and refetches.
func (b *IssueBoard) Create(ctx context.Context, in NewIssue) (*Issue, error) {
	issue, err := b.client.CreateIssue(ctx, in)
	if err != nil {
		return nil, err
	}
	return issue, b.Refresh(ctx)
}

// Update applies an admin update and refetches.
func (b *IssueBoard) Update(ctx context.Context, id string, update IssueUpdate) (*Issue, error) {
	issue, err := b.client.UpdateIssue(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return issue, b.Refresh(ctx)
}

// Resolve resolves an issue and refetches.
func (b *IssueBoard) Resolve(ctx context.Context, id string) (*Issue, error) {
	issue, err := b.client.ResolveIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	return issue, b.Refresh(ctx)
}
