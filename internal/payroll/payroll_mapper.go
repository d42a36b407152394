package payroll

import (
	"time"

	"go-fleetpay/internal/shared/civil"

	"github.com/google/uuid"
)

func idPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func lineItems(rows []LineItemRow) []LineItem {
	out := make([]LineItem, len(rows))
	for i, r := range rows {
		out[i] = r.LineItem
	}
	return out
}

func mapPeriod(p Period) PeriodResponse {
	return PeriodResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		StartDate: p.StartDate.Format(civil.Layout),
		EndDate:   p.EndDate.Format(civil.Layout),
		Status:    p.Status,
		ClosedAt:  timePtr(p.ClosedAt),
		ClosedBy:  idPtr(p.ClosedBy),
	}
}

func mapLineItem(r LineItemRow) LineItemResponse {
	return LineItemResponse{
		ID:           r.ID.String(),
		ShipmentID:   r.ShipmentID.String(),
		Reference:    r.Reference,
		Destination:  r.Destination,
		DeliveryDate: civil.Format(r.DeliveryDate),
		CrewID:       r.CrewID.String(),
		CrewName:     r.CrewName,
		CrewRole:     r.CrewRole,
		BaseFee:      r.BaseFee,
		Allowance:    r.Allowance,
		RateID:       idPtr(r.RateID),
	}
}

func mapAdjustment(a Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID.String(),
		UserID:         a.UserID.String(),
		PeriodID:       a.PeriodID.String(),
		Type:           a.Type,
		Amount:         a.Amount,
		Reason:         a.Reason,
		Source:         a.Source,
		SourcePeriodID: idPtr(a.SourcePeriodID),
		Status:         a.Status,
		CreatedBy:      idPtr(a.CreatedBy),
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		VoidedBy:       idPtr(a.VoidedBy),
		VoidedAt:       timePtr(a.VoidedAt),
		VoidReason:     a.VoidReason,
	}
}

func mapPayment(p Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID.String(),
		UserID:     p.UserID.String(),
		PeriodID:   p.PeriodID.String(),
		Amount:     p.Amount,
		Notes:      p.Notes,
		Status:     p.Status,
		PaidAt:     p.PaidAt.UTC().Format(time.RFC3339),
		CreatedBy:  idPtr(p.CreatedBy),
		VoidedBy:   idPtr(p.VoidedBy),
		VoidedAt:   timePtr(p.VoidedAt),
		VoidReason: p.VoidReason,
	}
}
