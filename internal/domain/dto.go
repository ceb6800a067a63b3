package domain

// APIResponse is the uniform envelope returned by every endpoint. List
// endpoints always fill TotalCount, Page and PageSize.
type APIResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	TotalCount *int64      `json:"totalCount,omitempty"`
	Page       *int        `json:"page,omitempty"`
	PageSize   *int        `json:"pageSize,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
}

// PaginatedResponse is what list services return before it is wrapped in the envelope
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Transfer records

type CompanyDTO struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Address          string  `json:"address,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Email            string  `json:"email,omitempty"`
	Website          string  `json:"website,omitempty"`
	City             string  `json:"city,omitempty"`
	District         string  `json:"district,omitempty"`
	PostalCode       string  `json:"postalCode,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        *string `json:"updatedAt,omitempty"`
	OpportunityCount int     `json:"opportunityCount"`
	ActivityCount    int     `json:"activityCount"`
}

type OpportunityDTO struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Stage       Stage    `json:"stage"`
	StageName   string   `json:"stageName"`
	ClosingDate *string  `json:"closingDate,omitempty"`
	CompanyID   uint     `json:"companyId"`
	CompanyName string   `json:"companyName,omitempty"`
	UserID      uint     `json:"userId"`
	UserName    string   `json:"userName,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   *string  `json:"updatedAt,omitempty"`
}

type ActivityDTO struct {
	ID              uint         `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Type            ActivityType `json:"type"`
	TypeName        string       `json:"typeName"`
	OccurredAt      string       `json:"occurredAt"`
	CompanyID       *uint        `json:"companyId,omitempty"`
	CompanyName     string       `json:"companyName,omitempty"`
	OpportunityID   *uint        `json:"opportunityId,omitempty"`
	OpportunityName string       `json:"opportunityName,omitempty"`
	UserID          uint         `json:"userId"`
	UserName        string       `json:"userName,omitempty"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       *string      `json:"updatedAt,omitempty"`
}

// UserDTO never carries the password hash
type UserDTO struct {
	ID          uint    `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	FullName    string  `json:"fullName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Role        Role    `json:"role"`
	RoleName    string  `json:"roleName"`
	Active      bool    `json:"active"`
	LastLoginAt *string `json:"lastLoginAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

type TaskDTO struct {
	ID              uint         `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Status          TaskStatus   `json:"status"`
	StatusName      string       `json:"statusName"`
	Priority        TaskPriority `json:"priority"`
	PriorityName    string       `json:"priorityName"`
	StartDate       *string      `json:"startDate,omitempty"`
	DueDate         *string      `json:"dueDate,omitempty"`
	CompletedAt     *string      `json:"completedAt,omitempty"`
	AssigneeID      *uint        `json:"assigneeId,omitempty"`
	AssigneeName    string       `json:"assigneeName,omitempty"`
	CreatorID       *uint        `json:"creatorId,omitempty"`
	CreatorName     string       `json:"creatorName,omitempty"`
	CompanyID       *uint        `json:"companyId,omitempty"`
	CompanyName     string       `json:"companyName,omitempty"`
	OpportunityID   *uint        `json:"opportunityId,omitempty"`
	OpportunityName string       `json:"opportunityName,omitempty"`
	IsOverdue       bool         `json:"isOverdue"`
	IsDueToday      bool         `json:"isDueToday"`
	IsDueSoon       bool         `json:"isDueSoon"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       *string      `json:"updatedAt,omitempty"`
}

// Request DTOs

type CreateCompanyRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Address    string `json:"address,omitempty" validate:"max=500"`
	Phone      string `json:"phone,omitempty" validate:"max=20"`
	Email      string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Website    string `json:"website,omitempty" validate:"omitempty,url,max=200"`
	City       string `json:"city,omitempty" validate:"max=100"`
	District   string `json:"district,omitempty" validate:"max=100"`
	PostalCode string `json:"postalCode,omitempty" validate:"max=50"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`
}

type UpdateCompanyRequest = CreateCompanyRequest

type CreateOpportunityRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description,omitempty" validate:"max=1000"`
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Stage       Stage    `json:"stage" validate:"required"`
	CompanyID   uint     `json:"companyId" validate:"required"`
	UserID      uint     `json:"userId" validate:"required"`
}

type UpdateOpportunityRequest = CreateOpportunityRequest

type UpdateStageRequest struct {
	Stage Stage `json:"stage" validate:"required"`
}

type CreateActivityRequest struct {
	Title         string       `json:"title" validate:"required,max=200"`
	Description   string       `json:"description,omitempty" validate:"max=2000"`
	Type          ActivityType `json:"type" validate:"required"`
	OccurredAt    *string      `json:"occurredAt,omitempty"`
	CompanyID     *uint        `json:"companyId,omitempty"`
	OpportunityID *uint        `json:"opportunityId,omitempty"`
	// UserID defaults to the authenticated caller when zero
	UserID uint `json:"userId,omitempty"`
}

type UpdateActivityRequest = CreateActivityRequest

type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone,omitempty" validate:"max=20"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
	Role      Role   `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone,omitempty" validate:"max=20"`
	Role      Role   `json:"role" validate:"required"`
	Active    *bool  `json:"active,omitempty"`
}

type CreateTaskRequest struct {
	Title         string       `json:"title" validate:"required,max=200"`
	Description   string       `json:"description,omitempty" validate:"max=1000"`
	Status        TaskStatus   `json:"status,omitempty"`
	Priority      TaskPriority `json:"priority,omitempty"`
	StartDate     *string      `json:"startDate,omitempty"`
	DueDate       *string      `json:"dueDate,omitempty"`
	AssigneeID    *uint        `json:"assigneeId,omitempty"`
	CompanyID     *uint        `json:"companyId,omitempty"`
	OpportunityID *uint        `json:"opportunityId,omitempty"`
}

type UpdateTaskRequest = CreateTaskRequest

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone,omitempty" validate:"max=20"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=100"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      UserDTO `json:"user"`
}

// List filters

// CompanyFilters narrows the company list. Search matches name, email and phone.
type CompanyFilters struct {
	Search string
	City   string
}

// OpportunityFilters narrows the opportunity list. Search matches name and description.
type OpportunityFilters struct {
	Search    string
	Stage     *Stage
	MinAmount *float64
	MaxAmount *float64
	CompanyID *uint
	UserID    *uint
}

type ActivityFilters struct {
	CompanyID     *uint
	OpportunityID *uint
	Type          *ActivityType
}

type TaskFilters struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	AssigneeID *uint
}
