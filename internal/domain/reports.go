package domain

// StageReport is one row of the stage distribution report
type StageReport struct {
	Stage         Stage   `json:"stage"`
	StageOrdinal  int     `json:"stageOrdinal"`
	DisplayName   string  `json:"displayName"`
	Count         int     `json:"count"`
	SumAmount     float64 `json:"sumAmount"`
	AverageAmount float64 `json:"averageAmount"`
	Percent       float64 `json:"percent"`
}

// MonthlyCount is one month of the activity trend
type MonthlyCount struct {
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Count int    `json:"count"`
}

// MonthlyAmount is one month of the revenue trend
type MonthlyAmount struct {
	Label  string  `json:"label"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

type CityReport struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type TaskStatusReport struct {
	Status        TaskStatus `json:"status"`
	StatusOrdinal int        `json:"statusOrdinal"`
	DisplayName   string     `json:"displayName"`
	Count         int        `json:"count"`
}

// DashboardStats holds the headline counters shown on the dashboard
type DashboardStats struct {
	TotalCompanies      int64 `json:"totalCompanies"`
	TotalOpportunities  int64 `json:"totalOpportunities"`
	ActiveOpportunities int64 `json:"activeOpportunities"`
	WonOpportunities    int64 `json:"wonOpportunities"`
	TotalActivities     int64 `json:"totalActivities"`
	ActivitiesThisMonth int64 `json:"activitiesThisMonth"`
	TotalTasks          int64 `json:"totalTasks"`
	OverdueTasks        int64 `json:"overdueTasks"`
}
