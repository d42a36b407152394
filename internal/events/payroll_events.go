package events

import "time"

const (
	PayrollPeriodClosedTopic = "fleet.payroll.period.v1"

	PayrollPeriodClosed = "payroll_period_closed"
)

type PayrollPeriodClosedEvent struct {
	EventType string    `json:"event_type"`
	RequestID string    `json:"request_id,omitempty"`
	PeriodID  string    `json:"period_id"`
	ClosedBy  string    `json:"closed_by"`
	ClosedAt  time.Time `json:"closed_at"`
}
