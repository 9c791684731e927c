package domain

import "time"

// IssueCategory is the closed set of facility areas an issue can belong to.
type IssueCategory string

const (
	CategoryElectrical     IssueCategory = "Electrical"
	CategoryWater          IssueCategory = "Water"
	CategoryInternet       IssueCategory = "Internet"
	CategoryInfrastructure IssueCategory = "Infrastructure"
)

// Categories lists every category in display order.
var Categories = []IssueCategory{CategoryElectrical, CategoryWater, CategoryInternet, CategoryInfrastructure}

func (c IssueCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IssueStatus enumerates lifecycle states. Admins may set any of them at any time.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "Open"
	IssueStatusInProgress IssueStatus = "In Progress"
	IssueStatusResolved   IssueStatus = "Resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []IssueStatus{IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved}

func (s IssueStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Color is the badge colour used when a status is displayed.
func (s IssueStatus) Color() string {
	switch s {
	case IssueStatusOpen:
		return "#3B82F6"
	case IssueStatusInProgress:
		return "#F59E0B"
	case IssueStatusResolved:
		return "#10B981"
	default:
		return "#6B7280"
	}
}

// Remark is an admin note embedded in an issue. Remarks are never edited.
type Remark struct {
	Text    string
	AddedBy string
	AddedAt time.Time
}

// Issue is a reported facility problem.
type Issue struct {
	ID          string
	Title       string
	Description string
	Category    IssueCategory
	Status      IssueStatus
	ImageURL    *string
	CreatedBy   string
	Remarks     []Remark
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy that shares no slices or pointers with i.
func (i *Issue) Clone() *Issue {
	out := *i
	if i.ImageURL != nil {
		url := *i.ImageURL
		out.ImageURL = &url
	}
	out.Remarks = append([]Remark(nil), i.Remarks...)
	if out.Remarks == nil {
		out.Remarks = []Remark{}
	}
	return &out
}

// IssueFilter narrows issue listings by exact match.
type IssueFilter struct {
	OwnerID  *string
	Category *IssueCategory
	Status   *IssueStatus
}

// Matches reports whether the issue satisfies every set predicate.
func (f IssueFilter) Matches(issue *Issue) bool {
	if f.OwnerID != nil && issue.CreatedBy != *f.OwnerID {
		return false
	}
	if f.Category != nil && issue.Category != *f.Category {
		return false
	}
	if f.Status != nil && issue.Status != *f.Status {
		return false
	}
	return true
}

// IssueUpdate is applied to a stored issue as one atomic write.
type IssueUpdate struct {
	Status    *IssueStatus
	Remark    *Remark
	UpdatedAt time.Time
}

// Apply mutates the issue the way a store applies update: status is
// overwritten, the remark appended, and updatedAt only moves forward.
func (i *Issue) Apply(update IssueUpdate) {
	if update.Status != nil {
		i.Status = *update.Status
	}
	if update.Remark != nil {
		i.Remarks = append(i.Remarks, *update.Remark)
	}
	if update.UpdatedAt.After(i.UpdatedAt) {
		i.UpdatedAt = update.UpdatedAt
	}
}

// AppliedUpdate is the result of one atomic update.
type AppliedUpdate struct {
	Issue *Issue
	// PreviousStatus is the status the write replaced.
	PreviousStatus IssueStatus
}
