package client

import "time"

// Issue categories and statuses accepted by the API.
var (
	Categories = []string{"Electrical", "Water", "Internet", "Infrastructure"}
	Statuses   = []string{"Open", "In Progress", "Resolved"}
)

// User is the public account view.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Person is a user reference embedded in issues.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Remark is an admin note on an issue.
type Remark struct {
	Text    string    `json:"text"`
	AddedBy Person    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// Issue is a reported facility problem.
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedBy   Person    `json:"createdBy"`
	Remarks     []Remark  `json:"remarks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows listings. Empty fields match everything.
type Filter struct {
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
}

// IssueList is a listing response.
type IssueList struct {
	Count   int     `json:"count"`
	Filters *Filter `json:"filters,omitempty"`
	Issues  []Issue `json:"issues"`
}

type issueEnvelope struct {
	Message string `json:"message"`
	Issue   Issue  `json:"issue"`
}

// IssueUpdate is an admin change. Nil fields are not sent.
type IssueUpdate struct {
	Status *string `json:"status,omitempty"`
	Remark *string `json:"remark,omitempty"`
}
