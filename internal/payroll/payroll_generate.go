package payroll

import (
	"context"
	"errors"
	"strings"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/events"
	"go-fleetpay/internal/messaging/kafka"
	payrollerrors "go-fleetpay/internal/payroll/errors"
	"go-fleetpay/internal/rate"
	"go-fleetpay/internal/shared/civil"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type accrual struct {
	rows      int
	shipments int
}

// Generate creates the missing line items of a period and rebuilds its
// carry-over deductions from the previous period. Running it again creates no
// duplicate line items.
func (s *service) Generate(ctx context.Context, viewer domain.Viewer, periodID string) (GenerateResult, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("period_id", periodID))
	if err := parseUUID(periodID, payrollerrors.ErrInvalidPeriodID); err != nil {
		return GenerateResult{}, err
	}

	result := GenerateResult{PeriodID: periodID, CarryOverTotal: decimal.Zero}
	var period *Period

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		period, err = lockOpenPeriod(ctx, repo, periodID)
		if err != nil {
			return err
		}

		acc, err := s.accrue(ctx, tx, period, "")
		if err != nil {
			return err
		}
		result.RowsCreated = acc.rows
		result.ShipmentsProcessed = acc.shipments

		n, total, err := s.carryOver(ctx, repo, period, viewer)
		if err != nil {
			return err
		}
		result.CarryOversCreated = n
		result.CarryOverTotal = total
		return nil
	})
	if err != nil {
		l.Warn("generate payroll failed", zap.Error(err))
		return GenerateResult{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_GENERATED",
		Entity:   "payroll_period",
		EntityID: periodID,
		Message:  "payroll generated for " + period.Name,
		Meta: map[string]any{
			"rows_created":        result.RowsCreated,
			"shipments_processed": result.ShipmentsProcessed,
			"carry_overs_created": result.CarryOversCreated,
			"carry_over_total":    result.CarryOverTotal.StringFixed(2),
		},
	})
	l.Info("payroll generated",
		zap.Int("rows_created", result.RowsCreated),
		zap.Int("shipments_processed", result.ShipmentsProcessed),
		zap.Int("carry_overs_created", result.CarryOversCreated),
	)
	return result, nil
}

// AccrueShipment books a just-completed shipment into the open period that
// contains its delivery date. Shipments with no such period wait for Generate.
func (s *service) AccrueShipment(ctx context.Context, shipmentID string) (int, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("shipment_id", shipmentID))
	if _, err := uuid.Parse(shipmentID); err != nil {
		return 0, payrollerrors.ErrInvalidID
	}

	cand, err := s.repo.FindCandidate(ctx, shipmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Info("shipment not completed, skipping accrual")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if cand.DeliveryDate == nil {
		l.Info("shipment has no delivery date, skipping accrual")
		return 0, nil
	}

	open, err := s.repo.OpenPeriodContaining(ctx, civil.Date(*cand.DeliveryDate))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Info("no open period for delivery date", zap.Time("delivery_date", *cand.DeliveryDate))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var acc accrual
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		period, err := lockOpenPeriod(ctx, s.repo.WithTx(tx), open.ID.String())
		if err != nil {
			return err
		}
		acc, err = s.accrue(ctx, tx, period, shipmentID)
		return err
	})
	if errors.Is(err, payrollerrors.ErrPeriodClosed) {
		l.Info("period closed before accrual")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if acc.rows > 0 {
		l.Info("shipment accrued", zap.Int("rows_created", acc.rows), zap.String("period_id", open.ID.String()))
	}
	return acc.rows, nil
}

// accrue inserts line items for completed shipments of the period that still
// miss one for some crew member.
func (s *service) accrue(ctx context.Context, tx *gorm.DB, period *Period, shipmentID string) (accrual, error) {
	repo := s.repo.WithTx(tx)
	cands, err := repo.ListCandidates(ctx, period.StartDate, period.EndDate, shipmentID)
	if err != nil {
		return accrual{}, err
	}
	if len(cands) == 0 {
		return accrual{}, nil
	}

	ids := make([]uuid.UUID, len(cands))
	for i, c := range cands {
		ids[i] = c.ShipmentID
	}
	existing, err := repo.ExistingLineKeys(ctx, ids)
	if err != nil {
		return accrual{}, err
	}

	lookup := s.rateLookup(ctx, tx)
	var (
		items []LineItem
		acc   accrual
	)
	for _, c := range cands {
		crew := []uuid.UUID{c.DriverID}
		roles := []string{CrewDriver}
		if c.HelperID != nil {
			crew = append(crew, *c.HelperID)
			roles = append(roles, CrewHelper)
		}

		missing := false
		for _, id := range crew {
			if !existing[LineKey{c.ShipmentID, id}] {
				missing = true
				break
			}
		}
		if !missing {
			continue
		}

		r, matched, err := lookup(c.VehicleType, c.Destination())
		if err != nil {
			return accrual{}, err
		}
		allowance := decimal.Zero
		var rateID *uuid.UUID
		if matched {
			allowance = r.FoodAllowance
			id := r.ID
			rateID = &id
		}
		shares := splitAllowance(allowance, len(crew))

		for i, id := range crew {
			if existing[LineKey{c.ShipmentID, id}] {
				continue
			}
			fee := s.defaults.DriverFee
			if roles[i] == CrewHelper {
				fee = s.defaults.HelperFee
			}
			if matched {
				fee = r.DriverBaseFee
				if roles[i] == CrewHelper {
					fee = r.HelperBaseFee
				}
			}
			items = append(items, LineItem{
				ID:         uuid.New(),
				ShipmentID: c.ShipmentID,
				CrewID:     id,
				CrewRole:   roles[i],
				PeriodID:   period.ID,
				BaseFee:    fee.Round(2),
				Allowance:  shares[i],
				RateID:     rateID,
			})
		}
		acc.shipments++
	}

	if err := repo.CreateLineItems(ctx, items); err != nil {
		if database.IsUniqueViolation(err, "idx_shipment_payrolls_crew") {
			return accrual{}, payrollerrors.ErrConcurrentGeneration.WithCause(err)
		}
		return accrual{}, err
	}
	acc.rows = len(items)
	return acc, nil
}

type rateFunc func(vehicleType, destination string) (rate.PayrollRate, bool, error)

// rateLookup memoizes the rate table per vehicle type for one run.
func (s *service) rateLookup(ctx context.Context, tx *gorm.DB) rateFunc {
	byType := make(map[string][]rate.PayrollRate)
	return func(vehicleType, destination string) (rate.PayrollRate, bool, error) {
		if s.rates == nil || strings.TrimSpace(vehicleType) == "" {
			return rate.PayrollRate{}, false, nil
		}
		key := strings.ToLower(strings.TrimSpace(vehicleType))
		rates, ok := byType[key]
		if !ok {
			var err error
			rates, err = s.rates.WithTx(tx).FindByVehicleType(ctx, key)
			if err != nil {
				return rate.PayrollRate{}, false, err
			}
			byType[key] = rates
		}
		r, matched := rate.Match(rates, destination)
		return r, matched, nil
	}
}

// carryOver replaces the period's active carry-over deductions with the
// overpayments of the previous period.
func (s *service) carryOver(ctx context.Context, repo Repository, period *Period, viewer domain.Viewer) (int, decimal.Decimal, error) {
	total := decimal.Zero
	if err := repo.DeleteActiveCarryOvers(ctx, period.ID.String()); err != nil {
		return 0, total, err
	}

	prev, err := repo.PreviousPeriod(ctx, period.StartDate)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, total, nil
	}
	if err != nil {
		return 0, total, err
	}

	rows, err := s.summary(ctx, repo, prev.ID.String())
	if err != nil {
		return 0, total, err
	}

	created := 0
	for _, row := range rows {
		over := row.TotalPaid.Sub(row.NetSalary)
		if !over.IsPositive() {
			continue
		}
		prevID := prev.ID
		adj := &Adjustment{
			ID:             uuid.New(),
			UserID:         uuid.MustParse(row.UserID),
			PeriodID:       period.ID,
			Type:           AdjustmentDeduction,
			Amount:         over.Round(2),
			Reason:         "Balance from Period #" + prev.Name,
			Source:         SourceCarryOver,
			SourcePeriodID: &prevID,
			Status:         StatusActive,
			CreatedBy:      actorPtr(viewer),
		}
		if err := repo.CreateAdjustment(ctx, adj); err != nil {
			return 0, total, err
		}
		created++
		total = total.Add(adj.Amount)
	}
	return created, total, nil
}

func (s *service) enqueueClosed(ctx context.Context, tx *gorm.DB, p *Period, actorID string) error {
	if s.outbox == nil {
		return nil
	}
	payload := events.PayrollPeriodClosedEvent{
		EventType: events.PayrollPeriodClosed,
		RequestID: contextutil.GetRequestID(ctx),
		PeriodID:  p.ID.String(),
		ClosedBy:  actorID,
		ClosedAt:  *p.ClosedAt,
	}
	evt, err := kafka.NewEvent(ctx, "payroll_period", p.ID.String(), events.PayrollPeriodClosed, events.PayrollPeriodClosedTopic, payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, evt)
}
