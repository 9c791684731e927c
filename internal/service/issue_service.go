package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/events"
	"github.com/campus-fixit/issue-service/internal/observability"
	"github.com/campus-fixit/issue-service/internal/repository"
	"github.com/campus-fixit/issue-service/internal/storage"
	apperrors "github.com/campus-fixit/issue-service/pkg/util/errorutil"
)

// DefaultMaxImageBytes caps a single issue photo.
const DefaultMaxImageBytes = 5 * 1024 * 1024

// IssueService coordinates the issue lifecycle.
type IssueService struct {
	issues        repository.IssueRepository
	users         repository.UserRepository
	uploader      storage.ImageUploader
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	now           func() time.Time
	uploadTimeout time.Duration
	maxImageBytes int64
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo     repository.IssueRepository
	UserRepo      repository.UserRepository
	Uploader      storage.ImageUploader
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Now           func() time.Time
	UploadTimeout time.Duration
	MaxImageBytes int64
}

// CreateIssueInput describes a new report. Image is optional.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Image       *storage.Image
}

// UpdateIssueInput carries an admin update. Nil fields are left untouched.
type UpdateIssueInput struct {
	Status *domain.IssueStatus
	Remark *string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	s := &IssueService{
		issues:        deps.IssueRepo,
		users:         deps.UserRepo,
		uploader:      deps.Uploader,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		now:           deps.Now,
		uploadTimeout: deps.UploadTimeout,
		maxImageBytes: deps.MaxImageBytes,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxImageBytes <= 0 {
		s.maxImageBytes = DefaultMaxImageBytes
	}
	return s
}

func (s *IssueService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// CreateIssue uploads the optional image first so a failed upload persists nothing.
func (s *IssueService) CreateIssue(ctx context.Context, ownerID string, in CreateIssueInput) (*domain.Issue, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	var fields []FieldError
	if title == "" {
		fields = append(fields, requiredField("title"))
	}
	if description == "" {
		fields = append(fields, requiredField("description"))
	}
	if !in.Category.Valid() {
		fields = append(fields, oneOfField("category", categoryNames()))
	}
	if in.Image != nil {
		fields = append(fields, s.checkImage(in.Image)...)
	}
	if len(fields) > 0 {
		return nil, NewFieldValidationError(fields)
	}

	var imageURL *string
	if in.Image != nil {
		url, err := s.upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	now := s.clock()
	issue := &domain.Issue{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Category:    in.Category,
		Status:      domain.IssueStatusOpen,
		ImageURL:    imageURL,
		CreatedBy:   ownerID,
		Remarks:     []domain.Remark{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.IssueCreated(string(issue.Category))

	s.publish(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: ownerID, Role: domain.RoleStudent},
		Payload: events.IssueCreatedPayload{
			OwnerID:  ownerID,
			Title:    issue.Title,
			Category: issue.Category,
			HasImage: imageURL != nil,
		},
	})
	return issue, nil
}

func (s *IssueService) checkImage(img *storage.Image) []FieldError {
	var fields []FieldError
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		fields = append(fields, FieldError{Field: "image", Rule: "image", Message: "only image files are allowed"})
	}
	if img.Size > s.maxImageBytes {
		fields = append(fields, FieldError{Field: "image", Rule: "max_size", Param: formatBytes(s.maxImageBytes), Message: "image must be at most " + formatBytes(s.maxImageBytes)})
	}
	return fields
}

func (s *IssueService) upload(ctx context.Context, img storage.Image) (string, error) {
	if s.uploader == nil {
		return "", apperrors.NewUploadError(errors.New("image uploads are not configured"))
	}
	uploadCtx := ctx
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}
	url, err := s.uploader.Upload(uploadCtx, img)
	if err != nil {
		s.metrics.UploadFailed()
		s.logger.Warn("image upload failed", zap.String("filename", img.Filename), zap.Error(err))
		return "", apperrors.NewUploadError(err)
	}
	return url, nil
}

// ListOwn returns the owner's issues, newest first.
func (s *IssueService) ListOwn(ctx context.Context, ownerID string, filter domain.IssueFilter) ([]domain.Issue, error) {
	filter.OwnerID = &ownerID
	return s.list(ctx, filter)
}

// ListAll returns every issue matching filter, newest first.
func (s *IssueService) ListAll(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	filter.OwnerID = nil
	return s.list(ctx, filter)
}

func (s *IssueService) list(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	issues, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return issues, nil
}

// GetOwn returns 404 for unknown ids and 403 when the issue belongs to someone else.
func (s *IssueService) GetOwn(ctx context.Context, ownerID, issueID string) (*domain.Issue, error) {
	issue, err := s.get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.CreatedBy != ownerID {
		return nil, apperrors.NewForbidden("not authorized to view this issue")
	}
	return issue, nil
}

func (s *IssueService) get(ctx context.Context, issueID string) (*domain.Issue, error) {
	if err := checkIssueID(issueID); err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return issue, nil
}

// checkIssueID treats malformed ids as unknown ones.
func checkIssueID(issueID string) error {
	if _, err := uuid.Parse(issueID); err != nil {
		return apperrors.NewNotFound("issue", map[string]any{"id": issueID})
	}
	return nil
}

// UpdateIssue overwrites the status and appends the remark in one store write.
// An update with neither field still refreshes updatedAt.
func (s *IssueService) UpdateIssue(ctx context.Context, adminID, issueID string, in UpdateIssueInput) (*domain.Issue, error) {
	var fields []FieldError
	if in.Status != nil && !in.Status.Valid() {
		fields = append(fields, oneOfField("status", statusNames()))
	}
	var remarkText string
	if in.Remark != nil {
		remarkText = strings.TrimSpace(*in.Remark)
		if remarkText == "" {
			fields = append(fields, FieldError{Field: "remark", Rule: "required", Message: "remark cannot be empty"})
		}
	}
	if len(fields) > 0 {
		return nil, NewFieldValidationError(fields)
	}

	if err := checkIssueID(issueID); err != nil {
		return nil, err
	}

	now := s.clock()
	update := domain.IssueUpdate{Status: in.Status, UpdatedAt: now}
	if in.Remark != nil {
		update.Remark = &domain.Remark{Text: remarkText, AddedBy: adminID, AddedAt: now}
	}

	applied, err := s.apply(ctx, issueID, update)
	if err != nil {
		return nil, err
	}

	statusChanged := in.Status != nil && *in.Status != applied.PreviousStatus
	if statusChanged || update.Remark != nil {
		s.publishUpdated(ctx, adminID, applied.PreviousStatus, applied.Issue, remarkText)
	}
	return applied.Issue, nil
}

// ResolveIssue marks the issue Resolved. Repeated calls succeed and add no remark.
func (s *IssueService) ResolveIssue(ctx context.Context, adminID, issueID string) (*domain.Issue, error) {
	if err := checkIssueID(issueID); err != nil {
		return nil, err
	}
	resolved := domain.IssueStatusResolved
	applied, err := s.apply(ctx, issueID, domain.IssueUpdate{Status: &resolved, UpdatedAt: s.clock()})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, adminID, applied.PreviousStatus, applied.Issue, "")
	return applied.Issue, nil
}

func (s *IssueService) apply(ctx context.Context, issueID string, update domain.IssueUpdate) (*domain.AppliedUpdate, error) {
	applied, err := s.issues.ApplyUpdate(ctx, issueID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.IssueUpdated(string(applied.Issue.Status))
	return applied, nil
}

// Participants resolves every owner and remark author referenced by issues.
// Users that no longer exist are simply absent from the result.
func (s *IssueService) Participants(ctx context.Context, issues ...domain.Issue) (map[string]domain.UserSummary, error) {
	seen := map[string]struct{}{}
	ids := []string{}
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, issue := range issues {
		add(issue.CreatedBy)
		for _, remark := range issue.Remarks {
			add(remark.AddedBy)
		}
	}

	out := make(map[string]domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

func (s *IssueService) publishUpdated(ctx context.Context, adminID string, oldStatus domain.IssueStatus, issue *domain.Issue, remark string) {
	s.publish(ctx, events.Event{
		Type:    events.EventIssueUpdated,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: adminID, Role: domain.RoleAdmin},
		Payload: events.IssueUpdatedPayload{
			OwnerID:   issue.CreatedBy,
			Title:     issue.Title,
			Category:  issue.Category,
			OldStatus: oldStatus,
			NewStatus: issue.Status,
			Remark:    remark,
		},
	})
}

// publish never fails the caller; delivery problems are only logged.
func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.clock()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("issue_id", event.IssueID),
			zap.Error(err))
	}
}

func categoryNames() []string {
	names := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		names = append(names, string(c))
	}
	return names
}

func statusNames() []string {
	names := make([]string, 0, len(domain.Statuses))
	for _, st := range domain.Statuses {
		names = append(names, string(st))
	}
	return names
}
