package domain

import "time"

// Create/Update request shapes shared by the HTTP handlers and the data
// access layer. Update requests use pointers so only the provided fields are
// written (dynamic SET clause in the DAL).

type CreateProjectRequest struct {
	Name                 string     `json:"name" form:"name" binding:"required,min=2,max=120"`
	CompanyID            string     `json:"companyId" form:"companyId" binding:"required"`
	Status               string     `json:"status" form:"status" binding:"omitempty,oneof=pending ongoing completed"`
	Deadline             *time.Time `json:"deadline" form:"deadline"`
	DiscountPercentage   float64    `json:"discountPercentage" form:"discountPercentage" binding:"gte=0,lte=100"`
	AdvanceAmount        float64    `json:"advanceAmount" form:"advanceAmount" binding:"gte=0"`
	AdvancePaymentDate   *time.Time `json:"advancePaymentDate" form:"advancePaymentDate"`
	AdvancePaymentMethod string     `json:"advancePaymentMethod" form:"advancePaymentMethod" binding:"max=64"`
	AdvanceNotes         string     `json:"advanceNotes" form:"advanceNotes" binding:"max=2000"`
}

type UpdateProjectRequest struct {
	Name                 *string    `json:"name" binding:"omitempty,min=2,max=120"`
	CompanyID            *string    `json:"companyId"`
	Status               *string    `json:"status" binding:"omitempty,oneof=pending ongoing completed"`
	Paid                 *bool      `json:"paid"`
	Deadline             *time.Time `json:"deadline"`
	DiscountPercentage   *float64   `json:"discountPercentage" binding:"omitempty,gte=0,lte=100"`
	AdvanceAmount        *float64   `json:"advanceAmount" binding:"omitempty,gte=0"`
	AdvancePaymentDate   *time.Time `json:"advancePaymentDate"`
	AdvancePaymentMethod *string    `json:"advancePaymentMethod" binding:"omitempty,max=64"`
	AdvanceNotes         *string    `json:"advanceNotes" binding:"omitempty,max=2000"`
}

type CreateTaskRequest struct {
	ProjectID     string     `json:"projectId" form:"projectId" binding:"required"`
	Title         string     `json:"title" form:"title" binding:"required,min=1,max=200"`
	Description   string     `json:"description" form:"description" binding:"max=4000"`
	Status        string     `json:"status" form:"status" binding:"omitempty,oneof=todo in-progress review completed"`
	Priority      string     `json:"priority" form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo    *string    `json:"assignedTo" form:"assignedTo"`
	Deadline      *time.Time `json:"deadline" form:"deadline"`
	BillingItemID *string    `json:"billingItemId" form:"billingItemId"`
	GroupID       *string    `json:"groupId" form:"groupId"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string    `json:"description" binding:"omitempty,max=4000"`
	Status        *string    `json:"status" binding:"omitempty,oneof=todo in-progress review completed"`
	Priority      *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Progress      *int       `json:"progress" binding:"omitempty,gte=0,lte=100"`
	AssignedTo    *string    `json:"assignedTo"`
	Deadline      *time.Time `json:"deadline"`
	BillingItemID *string    `json:"billingItemId"`
	TimeSpent     *int       `json:"timeSpent" binding:"omitempty,gte=0"`
	GroupID       *string    `json:"groupId"`
}

type CreateTaskGroupRequest struct {
	ProjectID     string  `json:"projectId" form:"projectId" binding:"required"`
	Name          string  `json:"name" form:"name" binding:"required,min=1,max=120"`
	Description   string  `json:"description" form:"description" binding:"max=2000"`
	Color         string  `json:"color" form:"color" binding:"max=32"`
	BillingItemID *string `json:"billingItemId" form:"billingItemId"`
}

type UpdateTaskGroupRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=120"`
	Description   *string `json:"description" binding:"omitempty,max=2000"`
	Color         *string `json:"color" binding:"omitempty,max=32"`
	Status        *string `json:"status" binding:"omitempty,oneof=todo in-progress review completed"`
	BillingItemID *string `json:"billingItemId"`
}

type CreateBillingItemRequest struct {
	ProjectID   string  `json:"projectId" form:"projectId" binding:"required"`
	Name        string  `json:"name" form:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description" form:"description" binding:"max=2000"`
	Quantity    int     `json:"quantity" form:"quantity" binding:"required,gte=1"`
	UnitPrice   float64 `json:"unitPrice" form:"unitPrice" binding:"gte=0"`
	Status      string  `json:"status" form:"status" binding:"omitempty,oneof=pending in-progress submitted completed"`
}

type UpdateBillingItemRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=1"`
	UnitPrice   *float64 `json:"unitPrice" binding:"omitempty,gte=0"`
	Status      *string  `json:"status" binding:"omitempty,oneof=pending in-progress submitted completed"`
}

type CreateIssueRequest struct {
	ProjectID   string  `json:"projectId" form:"projectId" binding:"required"`
	Title       string  `json:"title" form:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" form:"description" binding:"max=4000"`
	Type        string  `json:"type" form:"type" binding:"omitempty,oneof=general blocker change-request bug feature client-feedback"`
	Priority    string  `json:"priority" form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string `json:"assignedTo" form:"assignedTo"`
	TaskID      *string `json:"taskId" form:"taskId"`
	GroupID     *string `json:"groupId" form:"groupId"`
}

type UpdateIssueRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description     *string `json:"description" binding:"omitempty,max=4000"`
	Status          *string `json:"status" binding:"omitempty,oneof=open in-progress pending-approval approved rejected resolved"`
	Priority        *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo      *string `json:"assignedTo"`
	RejectionReason *string `json:"rejectionReason" binding:"omitempty,max=2000"`
}

type CreateCompanyRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=160"`
	Email       string `json:"email" form:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" form:"phone" binding:"max=40"`
	Address     string `json:"address" form:"address" binding:"max=400"`
	LogoURL     string `json:"logoUrl" form:"logoUrl" binding:"max=500"`
	LogoAltText string `json:"logoAltText" form:"logoAltText" binding:"max=200"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=160"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=40"`
	Address     *string `json:"address" binding:"omitempty,max=400"`
	LogoURL     *string `json:"logoUrl" binding:"omitempty,max=500"`
	LogoAltText *string `json:"logoAltText" binding:"omitempty,max=200"`
	IsActive    *bool   `json:"isActive"`
}
