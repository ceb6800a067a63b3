package mapper

import (
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
)

// TimeFormat is used for every timestamp in transfer records
const TimeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ParseTime accepts RFC 3339 timestamps and plain dates (2006-01-02, read as UTC midnight)
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ToCompanyDTO converts Company to CompanyDTO. The counts are taken from the
// preloaded back-references when present.
func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:               company.ID,
		Name:             company.Name,
		Address:          company.Address,
		Phone:            company.Phone,
		Email:            company.Email,
		Website:          company.Website,
		City:             company.City,
		District:         company.District,
		PostalCode:       company.PostalCode,
		Notes:            company.Notes,
		CreatedAt:        formatTime(company.CreatedAt),
		UpdatedAt:        formatTimePtr(company.UpdatedAt),
		OpportunityCount: len(company.Opportunities),
		ActivityCount:    len(company.Activities),
	}
}

// ToOpportunityDTO converts Opportunity to OpportunityDTO
func ToOpportunityDTO(o *domain.Opportunity) domain.OpportunityDTO {
	dto := domain.OpportunityDTO{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		Stage:       o.Stage,
		StageName:   o.Stage.DisplayName(),
		ClosingDate: formatTimePtr(o.ClosingDate),
		CompanyID:   o.CompanyID,
		UserID:      o.UserID,
		CreatedAt:   formatTime(o.CreatedAt),
		UpdatedAt:   formatTimePtr(o.UpdatedAt),
	}

	if o.Amount.Valid {
		amount := o.Amount.Decimal.InexactFloat64()
		dto.Amount = &amount
	}
	if o.Company != nil {
		dto.CompanyName = o.Company.Name
	}
	if o.User != nil {
		dto.UserName = o.User.FullName()
	}

	return dto
}

// ToActivityDTO converts Activity to ActivityDTO, enriched with linked names
func ToActivityDTO(a *domain.Activity) domain.ActivityDTO {
	dto := domain.ActivityDTO{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		Type:          a.Type,
		TypeName:      a.Type.DisplayName(),
		OccurredAt:    formatTime(a.OccurredAt),
		CompanyID:     a.CompanyID,
		OpportunityID: a.OpportunityID,
		UserID:        a.UserID,
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTimePtr(a.UpdatedAt),
	}

	if a.Company != nil {
		dto.CompanyName = a.Company.Name
	}
	if a.Opportunity != nil {
		dto.OpportunityName = a.Opportunity.Name
	}
	if a.User != nil {
		dto.UserName = a.User.FullName()
	}

	return dto
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		RoleName:    u.Role.DisplayName(),
		Active:      u.Active,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
		CreatedAt:   formatTime(u.CreatedAt),
	}
}

// ToTaskDTO converts Task to TaskDTO. The overdue/due flags are evaluated against now.
func ToTaskDTO(t *domain.Task, now time.Time) domain.TaskDTO {
	dto := domain.TaskDTO{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		StatusName:    t.Status.DisplayName(),
		Priority:      t.Priority,
		PriorityName:  t.Priority.DisplayName(),
		StartDate:     formatTimePtr(t.StartDate),
		DueDate:       formatTimePtr(t.DueDate),
		CompletedAt:   formatTimePtr(t.CompletedAt),
		AssigneeID:    t.AssigneeID,
		CreatorID:     t.CreatorID,
		CompanyID:     t.CompanyID,
		OpportunityID: t.OpportunityID,
		IsOverdue:     t.IsOverdue(now),
		IsDueToday:    t.IsDueToday(now),
		IsDueSoon:     t.IsDueSoon(now),
		CreatedAt:     formatTime(t.CreatedAt),
		UpdatedAt:     formatTimePtr(t.UpdatedAt),
	}

	if t.Assignee != nil {
		dto.AssigneeName = t.Assignee.FullName()
	}
	if t.Creator != nil {
		dto.CreatorName = t.Creator.FullName()
	}
	if t.Company != nil {
		dto.CompanyName = t.Company.Name
	}
	if t.Opportunity != nil {
		dto.OpportunityName = t.Opportunity.Name
	}

	return dto
}

// ToTaskDTOs maps a slice with a single clock reading
func ToTaskDTOs(tasks []domain.Task, now time.Time) []domain.TaskDTO {
	dtos := make([]domain.TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = ToTaskDTO(&tasks[i], now)
	}
	return dtos
}
