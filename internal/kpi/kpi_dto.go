package kpi

import "github.com/shopspring/decimal"

type ListFilter struct {
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
}

type UploadResult struct {
	PeriodID   string   `json:"period_id"`
	SourceFile string   `json:"source_file"`
	Imported   int      `json:"imported"`
	Matched    int      `json:"matched"`
	Unmatched  []string `json:"unmatched"`
}

type EntryResponse struct {
	ID           string          `json:"id"`
	PeriodID     string          `json:"period_id"`
	UserID       *string         `json:"user_id"`
	EmployeeName string          `json:"employee_name"`
	Trips        int             `json:"trips"`
	OnTimeRate   decimal.Decimal `json:"on_time_rate"`
	Score        decimal.Decimal `json:"score"`
	SourceFile   string          `json:"source_file"`
	CreatedAt    string          `json:"created_at"`
}
