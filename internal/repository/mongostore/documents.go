// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"time"

	"github.com/campus-fixit/issue-service/internal/domain"
)

const (
	UsersCollection  = "users"
	IssuesCollection = "issues"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func newUserDocument(user *domain.User) userDocument {
	return userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
	}
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type remarkDocument struct {
	Text    string    `bson:"text"`
	AddedBy string    `bson:"addedBy"`
	AddedAt time.Time `bson:"addedAt"`
}

type issueDocument struct {
	ID          string           `bson:"_id"`
	Title       string           `bson:"title"`
	Description string           `bson:"description"`
	Category    string           `bson:"category"`
	Status      string           `bson:"status"`
	ImageURL    *string          `bson:"imageUrl"`
	CreatedBy   string           `bson:"createdBy"`
	Remarks     []remarkDocument `bson:"remarks"`
	CreatedAt   time.Time        `bson:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt"`
}

func newIssueDocument(issue *domain.Issue) issueDocument {
	// remarks must be stored as an array, never null, or $push fails.
	remarks := make([]remarkDocument, 0, len(issue.Remarks))
	for _, remark := range issue.Remarks {
		remarks = append(remarks, newRemarkDocument(remark))
	}
	return issueDocument{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Category:    string(issue.Category),
		Status:      string(issue.Status),
		ImageURL:    issue.ImageURL,
		CreatedBy:   issue.CreatedBy,
		Remarks:     remarks,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

func newRemarkDocument(remark domain.Remark) remarkDocument {
	return remarkDocument{Text: remark.Text, AddedBy: remark.AddedBy, AddedAt: remark.AddedAt}
}

func (d issueDocument) toDomain() domain.Issue {
	remarks := make([]domain.Remark, 0, len(d.Remarks))
	for _, remark := range d.Remarks {
		remarks = append(remarks, domain.Remark{
			Text:    remark.Text,
			AddedBy: remark.AddedBy,
			AddedAt: remark.AddedAt.UTC(),
		})
	}
	return domain.Issue{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    domain.IssueCategory(d.Category),
		Status:      domain.IssueStatus(d.Status),
		ImageURL:    d.ImageURL,
		CreatedBy:   d.CreatedBy,
		Remarks:     remarks,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
