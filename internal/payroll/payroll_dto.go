package payroll

import "github.com/shopspring/decimal"

type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type PeriodResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Status    string  `json:"status"`
	ClosedAt  *string `json:"closed_at"`
	ClosedBy  *string `json:"closed_by"`
}

type GenerateRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
}

type GenerateResult struct {
	PeriodID           string          `json:"period_id"`
	RowsCreated        int             `json:"rows_created"`
	ShipmentsProcessed int             `json:"shipments_processed"`
	CarryOversCreated  int             `json:"carry_overs_created"`
	CarryOverTotal     decimal.Decimal `json:"carry_over_total"`
}

type ClosePeriodRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
}

type SummaryRow struct {
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	TotalBasePay    decimal.Decimal `json:"total_base_pay"`
	TotalAllowance  decimal.Decimal `json:"total_allowance"`
	TotalBonus      decimal.Decimal `json:"total_bonus"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	Status          string          `json:"status"`
}

type LineItemResponse struct {
	ID           string          `json:"id"`
	ShipmentID   string          `json:"shipment_id"`
	Reference    string          `json:"reference"`
	Destination  string          `json:"destination"`
	DeliveryDate *string         `json:"delivery_date"`
	CrewID       string          `json:"crew_id"`
	CrewName     string          `json:"crew_name"`
	CrewRole     string          `json:"crew_role"`
	BaseFee      decimal.Decimal `json:"base_fee"`
	Allowance    decimal.Decimal `json:"allowance"`
	RateID       *string         `json:"rate_id"`
}

type CreateAdjustmentRequest struct {
	UserID   string          `json:"user_id" binding:"required,uuid"`
	PeriodID string          `json:"period_id" binding:"required,uuid"`
	Type     string          `json:"type" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason" binding:"required,max=500"`
}

type AdjustmentResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	PeriodID       string          `json:"period_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	Source         string          `json:"source"`
	SourcePeriodID *string         `json:"source_period_id"`
	Status         string          `json:"status"`
	CreatedBy      *string         `json:"created_by"`
	CreatedAt      string          `json:"created_at"`
	VoidedBy       *string         `json:"voided_by"`
	VoidedAt       *string         `json:"voided_at"`
	VoidReason     *string         `json:"void_reason"`
}

type CreatePaymentRequest struct {
	UserID   string          `json:"user_id" binding:"required,uuid"`
	PeriodID string          `json:"period_id" binding:"required,uuid"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    *string         `json:"notes" binding:"omitempty,max=500"`
	PaidAt   *string         `json:"paid_at" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type PaymentResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	PeriodID   string          `json:"period_id"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      *string         `json:"notes"`
	Status     string          `json:"status"`
	PaidAt     string          `json:"paid_at"`
	CreatedBy  *string         `json:"created_by"`
	VoidedBy   *string         `json:"voided_by"`
	VoidedAt   *string         `json:"voided_at"`
	VoidReason *string         `json:"void_reason"`
}

type VoidRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// RecordFilter narrows adjustment and payment listings.
type RecordFilter struct {
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
}

type LedgerResponse struct {
	Period      PeriodResponse       `json:"period"`
	Summary     SummaryRow           `json:"summary"`
	LineItems   []LineItemResponse   `json:"line_items"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	Payments    []PaymentResponse    `json:"payments"`
}

type ExportQuery struct {
	PeriodID string `form:"period_id" binding:"required,uuid"`
}
