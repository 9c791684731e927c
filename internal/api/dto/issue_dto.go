package dto

import (
	"time"

	"github.com/campus-fixit/issue-service/internal/domain"
)

// CreateIssueForm holds the text parts of the multipart create request.
type CreateIssueForm struct {
	Title       string `form:"title" json:"title" validate:"required,max=200"`
	Description string `form:"description" json:"description" validate:"required,max=5000"`
	Category    string `form:"category" json:"category" validate:"required,issue_category"`
}

// UpdateIssueRequest payload for admin updates. Both fields are optional.
type UpdateIssueRequest struct {
	Status *string `json:"status" validate:"omitempty,issue_status"`
	Remark *string `json:"remark" validate:"omitempty,max=2000"`
}

// IssueFilters echoes the filters applied to a listing.
type IssueFilters struct {
	Category *string `json:"category"`
	Status   *string `json:"status"`
}

// PersonRef is an embedded user reference.
type PersonRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RemarkResponse is one admin remark.
type RemarkResponse struct {
	Text    string    `json:"text"`
	AddedBy PersonRef `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// IssueResponse is the full issue view.
type IssueResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    domain.IssueCategory `json:"category"`
	Status      domain.IssueStatus   `json:"status"`
	ImageURL    *string              `json:"imageUrl"`
	CreatedBy   PersonRef            `json:"createdBy"`
	Remarks     []RemarkResponse     `json:"remarks"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// IssueEnvelope wraps a single issue, optionally with a message.
type IssueEnvelope struct {
	Message string        `json:"message,omitempty"`
	Issue   IssueResponse `json:"issue"`
}

// IssueListResponse wraps a listing. Filters is omitted for unfiltered listings.
type IssueListResponse struct {
	Count   int             `json:"count"`
	Filters *IssueFilters   `json:"filters,omitempty"`
	Issues  []IssueResponse `json:"issues"`
}

func personRef(id string, people map[string]domain.UserSummary) PersonRef {
	p := people[id]
	return PersonRef{ID: id, Name: p.Name, Email: p.Email}
}

// NewIssueResponse renders issue with names resolved from people.
func NewIssueResponse(issue *domain.Issue, people map[string]domain.UserSummary) IssueResponse {
	remarks := make([]RemarkResponse, 0, len(issue.Remarks))
	for _, r := range issue.Remarks {
		remarks = append(remarks, RemarkResponse{
			Text:    r.Text,
			AddedBy: personRef(r.AddedBy, people),
			AddedAt: r.AddedAt,
		})
	}
	return IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Category:    issue.Category,
		Status:      issue.Status,
		ImageURL:    issue.ImageURL,
		CreatedBy:   personRef(issue.CreatedBy, people),
		Remarks:     remarks,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

func NewIssueListResponse(issues []domain.Issue, people map[string]domain.UserSummary, filters *IssueFilters) IssueListResponse {
	out := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		out = append(out, NewIssueResponse(&issues[i], people))
	}
	return IssueListResponse{Count: len(out), Filters: filters, Issues: out}
}
