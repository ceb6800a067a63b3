package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BaseModel carries the integer identity and timestamps shared by every entity.
// UpdatedAt is only stamped by explicit updates, never on create.
type BaseModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time  `gorm:"not null;index"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

// Company is a customer organisation (firma)
type Company struct {
	BaseModel
	Name       string `gorm:"type:varchar(200);not null;index"`
	Address    string `gorm:"type:varchar(500)"`
	Phone      string `gorm:"type:varchar(20)"`
	Email      string `gorm:"type:varchar(100)"`
	Website    string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100);index"`
	District   string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(50)"`
	Notes      string `gorm:"type:varchar(1000)"`

	Opportunities []Opportunity `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Activities    []Activity    `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
}

// Opportunity is a sales deal (firsat) moving through the stage pipeline
type Opportunity struct {
	BaseModel
	Name        string              `gorm:"type:varchar(200);not null"`
	Description string              `gorm:"type:varchar(1000)"`
	Amount      decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	Stage       Stage               `gorm:"not null;index"`
	ClosingDate *time.Time          `gorm:"index"`
	CompanyID   uint                `gorm:"not null;index"`
	Company     *Company            `gorm:"foreignKey:CompanyID"`
	UserID      uint                `gorm:"not null;index"`
	User        *User               `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`

	Activities []Activity `gorm:"foreignKey:OpportunityID;constraint:OnDelete:SET NULL"`
}

// IsClosed reports whether the opportunity sits in a terminal stage
func (o *Opportunity) IsClosed() bool {
	return o.Stage.IsTerminal()
}

// LastTouched returns the update timestamp, or creation when never updated
func (o *Opportunity) LastTouched() time.Time {
	if o.UpdatedAt != nil {
		return *o.UpdatedAt
	}
	return o.CreatedAt
}

// Activity is a logged interaction (aktivite)
type Activity struct {
	BaseModel
	Title         string       `gorm:"type:varchar(200);not null"`
	Description   string       `gorm:"type:varchar(2000)"`
	Type          ActivityType `gorm:"not null;index"`
	OccurredAt    time.Time    `gorm:"not null;index"`
	CompanyID     *uint        `gorm:"index"`
	Company       *Company     `gorm:"foreignKey:CompanyID"`
	OpportunityID *uint        `gorm:"index"`
	Opportunity   *Opportunity `gorm:"foreignKey:OpportunityID"`
	UserID        uint         `gorm:"not null;index"`
	User          *User        `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// User is an application account (kullanici). Active=false is a soft delete.
type User struct {
	BaseModel
	FirstName    string     `gorm:"type:varchar(50);not null"`
	LastName     string     `gorm:"type:varchar(50);not null"`
	Email        string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Phone        string     `gorm:"type:varchar(20)"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	Role         Role       `gorm:"not null"`
	Active       bool       `gorm:"not null;index"`
	LastLoginAt  *time.Time
}

// FullName is derived on read and never stored
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Task is a to-do item (gorev). Active=false is a soft delete.
type Task struct {
	BaseModel
	Title         string       `gorm:"type:varchar(200);not null"`
	Description   string       `gorm:"type:varchar(1000)"`
	Status        TaskStatus   `gorm:"not null;index"`
	Priority      TaskPriority `gorm:"not null"`
	StartDate     *time.Time
	DueDate       *time.Time   `gorm:"index"`
	CompletedAt   *time.Time
	AssigneeID    *uint        `gorm:"index"`
	Assignee      *User        `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL"`
	CreatorID     *uint
	Creator       *User        `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL"`
	CompanyID     *uint        `gorm:"index"`
	Company       *Company     `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	OpportunityID *uint        `gorm:"index"`
	Opportunity   *Opportunity `gorm:"foreignKey:OpportunityID;constraint:OnDelete:SET NULL"`
	Active        bool         `gorm:"not null;index"`
}

// IsOverdue reports a due date in the past on a task that is not completed
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// IsDueToday compares calendar dates in now's location
func (t *Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return sameDay(t.DueDate.In(now.Location()), now)
}

// IsDueSoon reports a due date at most three calendar days ahead (date granularity)
func (t *Task) IsDueSoon(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	limit := StartOfDay(now).AddDate(0, 0, 4)
	return t.DueDate.Before(limit)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
