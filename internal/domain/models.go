// Package domain holds the entity records shared by the data access layer,
// the application state store and the board state machine. Optional fields
// are pointers; everything crossing the DAL boundary is validated there.
package domain

import "time"

type (
	Role          string
	ProjectStatus string
	TaskStatus    string
	BillingStatus string
	IssueStatus   string
	IssueType     string
	Priority      string
)

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleDesigner Role = "3d-designer"
	RoleClient   Role = "client"
)

const (
	ProjectPending   ProjectStatus = "pending"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
)

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
)

const (
	BillingPending    BillingStatus = "pending"
	BillingInProgress BillingStatus = "in-progress"
	BillingSubmitted  BillingStatus = "submitted"
	BillingCompleted  BillingStatus = "completed"
)

const (
	IssueOpen            IssueStatus = "open"
	IssueInProgress      IssueStatus = "in-progress"
	IssuePendingApproval IssueStatus = "pending-approval"
	IssueApproved        IssueStatus = "approved"
	IssueRejected        IssueStatus = "rejected"
	IssueResolved        IssueStatus = "resolved"
)

const (
	IssueGeneral        IssueType = "general"
	IssueBlocker        IssueType = "blocker"
	IssueChangeRequest  IssueType = "change-request"
	IssueBug            IssueType = "bug"
	IssueFeature        IssueType = "feature"
	IssueClientFeedback IssueType = "client-feedback"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	LogoURL     string    `json:"logoUrl"`
	LogoAltText string    `json:"logoAltText"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Project owns its tasks, groups, billing items and issues; the slices are
// the denormalized in-memory graph the store maintains, not DB columns.
type Project struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	CompanyID            string        `json:"companyId"`
	Status               ProjectStatus `json:"status"`
	Paid                 bool          `json:"paid"`
	Deadline             *time.Time    `json:"deadline,omitempty"`
	DiscountPercentage   float64       `json:"discountPercentage"`
	AdvanceAmount        float64       `json:"advanceAmount"`
	AdvancePaymentDate   *time.Time    `json:"advancePaymentDate,omitempty"`
	AdvancePaymentMethod string        `json:"advancePaymentMethod,omitempty"`
	AdvanceNotes         string        `json:"advanceNotes,omitempty"`
	Team                 []string      `json:"team,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`

	Tasks        []Task        `json:"tasks"`
	TaskGroups   []TaskGroup   `json:"taskGroups"`
	BillingItems []BillingItem `json:"billingItems"`
	Issues       []Issue       `json:"issues"`
}

type Task struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	Progress      int        `json:"progress"`
	AssignedTo    *string    `json:"assignedTo,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	BillingItemID *string    `json:"billingItemId,omitempty"`
	TimeSpent     int        `json:"timeSpent"`
	GroupID       *string    `json:"groupId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

/// TaskGroup status is stored independently of its member tasks: it is
// recomputed from them after task changes but can also be set directly by
// dragging the group card.
type TaskGroup struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Color         string     `json:"color"`
	Status        TaskStatus `json:"status"`
	BillingItemID *string    `json:"billingItemId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type BillingItem struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"projectId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Quantity    int           `json:"quantity"`
	UnitPrice   float64       `json:"unitPrice"`
	TotalPrice  float64       `json:"totalPrice"`
	Status      BillingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type Issue struct {
	ID              string      `json:"id"`
	ProjectID       string      `json:"projectId"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Type            IssueType   `json:"type"`
	Status          IssueStatus `json:"status"`
	Priority        Priority    `json:"priority"`
	AssignedTo      *string     `json:"assignedTo,omitempty"`
	ReportedBy      string      `json:"reportedBy"`
	TaskID          *string     `json:"taskId,omitempty"`
	GroupID         *string     `json:"groupId,omitempty"`
	RejectionReason *string     `json:"rejectionReason,omitempty"`
	ApprovedAt      *time.Time  `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time  `json:"rejectedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	Enabled   bool   `json:"enabled"`
}

func ValidTaskStatus(s TaskStatus) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusReview || s == StatusCompleted
}

func ValidBillingStatus(s BillingStatus) bool {
	return s == BillingPending || s == BillingInProgress || s == BillingSubmitted || s == BillingCompleted
}

func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueOpen, IssueInProgress, IssuePendingApproval, IssueApproved, IssueRejected, IssueResolved:
		return true
	}
	return false
}

func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

// Actor is the identity performing a mutation, resolved from the request
// token by the auth middleware.
type Actor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// CanManage reports whether the role may perform privileged mutations
// (approvals, unrestricted board moves, user management).
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}
