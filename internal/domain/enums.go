package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// enumEntry is one row of an enum lookup table. Every consumer (DTO mapping,
// reports, exports, notifications) reads names from these tables.
type enumEntry struct {
	Name        string
	DisplayName string
}

// Stage is the pipeline position of an opportunity. The ordinal defines
// display order only; any stage may move to any other.
type Stage int

const (
	StageInitialContact Stage = iota + 1
	StageProposalPreparation
	StageProposalSent
	StageNegotiation
	StageWonClosed
	StageLostClosed
)

var stageTable = map[Stage]enumEntry{
	StageInitialContact:      {"InitialContact", "İlk İletişim"},
	StageProposalPreparation: {"ProposalPreparation", "Teklif Hazırlama"},
	StageProposalSent:        {"ProposalSent", "Teklif Gönderildi"},
	StageNegotiation:         {"Negotiation", "Müzakere"},
	StageWonClosed:           {"WonClosed", "Kazanıldı"},
	StageLostClosed:          {"LostClosed", "Kaybedildi"},
}

// AllStages lists stages in ordinal order
func AllStages() []Stage {
	return []Stage{
		StageInitialContact, StageProposalPreparation, StageProposalSent,
		StageNegotiation, StageWonClosed, StageLostClosed,
	}
}

// TerminalStages are the stages that end an opportunity's lifecycle
func TerminalStages() []Stage {
	return []Stage{StageWonClosed, StageLostClosed}
}

func (s Stage) IsValid() bool       { _, ok := stageTable[s]; return ok }
func (s Stage) IsTerminal() bool    { return s == StageWonClosed || s == StageLostClosed }
func (s Stage) String() string      { return stageTable[s].Name }
func (s Stage) DisplayName() string { return stageTable[s].DisplayName }

func (s Stage) MarshalJSON() ([]byte, error) { return marshalEnum(s.IsValid(), s.String(), int(s)) }

func (s *Stage) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "stage", func(raw string) error {
		v, err := ParseStage(raw)
		*s = v
		return err
	})
}

// ParseStage accepts a stage name (case-insensitive) or its ordinal
func ParseStage(raw string) (Stage, error) {
	v, err := parseEnum(raw, stageTable)
	if err != nil {
		return 0, fmt.Errorf("invalid stage %q", raw)
	}
	return v, nil
}

// TaskStatus is the progress state of a task
type TaskStatus int

const (
	TaskStatusPending TaskStatus = iota + 1
	TaskStatusInProgress
	TaskStatusCompleted
	TaskStatusCancelled
)

var taskStatusTable = map[TaskStatus]enumEntry{
	TaskStatusPending:    {"Pending", "Beklemede"},
	TaskStatusInProgress: {"InProgress", "Devam Ediyor"},
	TaskStatusCompleted:  {"Completed", "Tamamlandı"},
	TaskStatusCancelled:  {"Cancelled", "İptal Edildi"},
}

func (s TaskStatus) IsValid() bool       { _, ok := taskStatusTable[s]; return ok }
func (s TaskStatus) String() string      { return taskStatusTable[s].Name }
func (s TaskStatus) DisplayName() string { return taskStatusTable[s].DisplayName }

func (s TaskStatus) MarshalJSON() ([]byte, error) { return marshalEnum(s.IsValid(), s.String(), int(s)) }

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "task status", func(raw string) error {
		v, err := ParseTaskStatus(raw)
		*s = v
		return err
	})
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	v, err := parseEnum(raw, taskStatusTable)
	if err != nil {
		return 0, fmt.Errorf("invalid task status %q", raw)
	}
	return v, nil
}

// TaskPriority orders tasks; higher ordinal means more urgent
type TaskPriority int

const (
	TaskPriorityLow TaskPriority = iota + 1
	TaskPriorityNormal
	TaskPriorityHigh
	TaskPriorityCritical
)

var taskPriorityTable = map[TaskPriority]enumEntry{
	TaskPriorityLow:      {"Low", "Düşük"},
	TaskPriorityNormal:   {"Normal", "Normal"},
	TaskPriorityHigh:     {"High", "Yüksek"},
	TaskPriorityCritical: {"Critical", "Kritik"},
}

func (p TaskPriority) IsValid() bool       { _, ok := taskPriorityTable[p]; return ok }
func (p TaskPriority) String() string      { return taskPriorityTable[p].Name }
func (p TaskPriority) DisplayName() string { return taskPriorityTable[p].DisplayName }

func (p TaskPriority) MarshalJSON() ([]byte, error) {
	return marshalEnum(p.IsValid(), p.String(), int(p))
}

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "task priority", func(raw string) error {
		v, err := ParseTaskPriority(raw)
		*p = v
		return err
	})
}

func ParseTaskPriority(raw string) (TaskPriority, error) {
	v, err := parseEnum(raw, taskPriorityTable)
	if err != nil {
		return 0, fmt.Errorf("invalid task priority %q", raw)
	}
	return v, nil
}

// ActivityType classifies a logged activity
type ActivityType int

const (
	ActivityTypePhone ActivityType = iota + 1
	ActivityTypeEmail
	ActivityTypeMeeting
	ActivityTypeNote
	ActivityTypeTask
)

var activityTypeTable = map[ActivityType]enumEntry{
	ActivityTypePhone:   {"Phone", "Telefon"},
	ActivityTypeEmail:   {"Email", "Email"},
	ActivityTypeMeeting: {"Meeting", "Toplantı"},
	ActivityTypeNote:    {"Note", "Not"},
	ActivityTypeTask:    {"Task", "Görev"},
}

func (a ActivityType) IsValid() bool       { _, ok := activityTypeTable[a]; return ok }
func (a ActivityType) String() string      { return activityTypeTable[a].Name }
func (a ActivityType) DisplayName() string { return activityTypeTable[a].DisplayName }

func (a ActivityType) MarshalJSON() ([]byte, error) {
	return marshalEnum(a.IsValid(), a.String(), int(a))
}

func (a *ActivityType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "activity type", func(raw string) error {
		v, err := ParseActivityType(raw)
		*a = v
		return err
	})
}

func ParseActivityType(raw string) (ActivityType, error) {
	v, err := parseEnum(raw, activityTypeTable)
	if err != nil {
		return 0, fmt.Errorf("invalid activity type %q", raw)
	}
	return v, nil
}

// Role is a coarse user permission level
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleManager
	RoleSales
	RoleUser
)

var roleTable = map[Role]enumEntry{
	RoleAdmin:   {"Admin", "Admin"},
	RoleManager: {"Manager", "Yönetici"},
	RoleSales:   {"Sales", "Satış Temsilcisi"},
	RoleUser:    {"User", "Kullanıcı"},
}

func (r Role) IsValid() bool       { _, ok := roleTable[r]; return ok }
func (r Role) String() string      { return roleTable[r].Name }
func (r Role) DisplayName() string { return roleTable[r].DisplayName }

func (r Role) MarshalJSON() ([]byte, error) { return marshalEnum(r.IsValid(), r.String(), int(r)) }

func (r *Role) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "role", func(raw string) error {
		v, err := ParseRole(raw)
		*r = v
		return err
	})
}

func ParseRole(raw string) (Role, error) {
	v, err := parseEnum(raw, roleTable)
	if err != nil {
		return 0, fmt.Errorf("invalid role %q", raw)
	}
	return v, nil
}

// parseEnum matches a name case-insensitively, falling back to the ordinal
func parseEnum[E ~int](raw string, table map[E]enumEntry) (E, error) {
	raw = strings.TrimSpace(raw)
	for k, e := range table {
		if strings.EqualFold(e.Name, raw) {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if _, ok := table[E(n)]; ok {
			return E(n), nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", raw)
}

// marshalEnum writes the name, or the bare ordinal for out-of-range values
func marshalEnum(valid bool, name string, ordinal int) ([]byte, error) {
	if !valid {
		return []byte(strconv.Itoa(ordinal)), nil
	}
	return json.Marshal(name)
}

// unmarshalEnum accepts both "Name" and a bare ordinal number
func unmarshalEnum(data []byte, kind string, set func(string) error) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%s must be a name or number", kind)
		}
		s = strconv.Itoa(n)
	}
	return set(s)
}
