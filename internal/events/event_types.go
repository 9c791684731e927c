package events

import (
	"time"

	"github.com/campus-fixit/issue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated EventType = "issue_created"
	EventIssueUpdated EventType = "issue_updated"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	OwnerID  string               `json:"owner_id"`
	Title    string               `json:"title"`
	Category domain.IssueCategory `json:"category"`
	HasImage bool                 `json:"has_image"`
}

// IssueUpdatedPayload payload. Remark is empty when none was appended.
type IssueUpdatedPayload struct {
	OwnerID   string               `json:"owner_id"`
	Title     string               `json:"title"`
	Category  domain.IssueCategory `json:"category"`
	OldStatus domain.IssueStatus   `json:"old_status"`
	NewStatus domain.IssueStatus   `json:"new_status"`
	Remark    string               `json:"remark,omitempty"`
}
