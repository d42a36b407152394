package payroll

import (
	"context"
	"strings"
	"time"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
	payrollerrors "go-fleetpay/internal/payroll/errors"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *service) ListAdjustments(ctx context.Context, f RecordFilter) ([]AdjustmentResponse, error) {
	adjs, err := s.repo.ListAdjustments(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]AdjustmentResponse, len(adjs))
	for i, a := range adjs {
		out[i] = mapAdjustment(a)
	}
	return out, nil
}

// ensureUser rejects adjustments and payments for unknown users.
func ensureUser(ctx context.Context, repo Repository, id uuid.UUID) error {
	people, err := repo.FindPeople(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if len(people) == 0 {
		return payrollerrors.ErrUserNotFound
	}
	return nil
}

func (s *service) CreateAdjustment(ctx context.Context, viewer domain.Viewer, req CreateAdjustmentRequest) (AdjustmentResponse, error) {
	typ := strings.ToUpper(strings.TrimSpace(req.Type))
	if typ != AdjustmentBonus && typ != AdjustmentDeduction {
		return AdjustmentResponse{}, payrollerrors.ErrInvalidAdjustmentType
	}
	if !req.Amount.IsPositive() {
		return AdjustmentResponse{}, payrollerrors.ErrInvalidAmount
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return AdjustmentResponse{}, payrollerrors.ErrInvalidUserID
	}
	periodID, err := uuid.Parse(req.PeriodID)
	if err != nil {
		return AdjustmentResponse{}, payrollerrors.ErrInvalidPeriodID
	}

	adj := &Adjustment{
		ID:        uuid.New(),
		UserID:    userID,
		PeriodID:  periodID,
		Type:      typ,
		Amount:    req.Amount.Round(2),
		Reason:    strings.TrimSpace(req.Reason),
		Source:    SourceManual,
		Status:    StatusActive,
		CreatedBy: actorPtr(viewer),
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := lockOpenPeriod(ctx, repo, req.PeriodID); err != nil {
			return err
		}
		if err := ensureUser(ctx, repo, userID); err != nil {
			return err
		}
		return repo.CreateAdjustment(ctx, adj)
	})
	if err != nil {
		return AdjustmentResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_ADJUSTMENT_CREATED",
		Entity:   "payroll_adjustment",
		EntityID: adj.ID.String(),
		Message:  strings.ToLower(typ) + " " + adj.Amount.StringFixed(2) + " recorded",
		Meta:     map[string]any{"user_id": req.UserID, "period_id": req.PeriodID},
	})
	return mapAdjustment(*adj), nil
}

func (s *service) VoidAdjustment(ctx context.Context, viewer domain.Viewer, id string, req VoidRequest) (AdjustmentResponse, error) {
	if err := parseUUID(id, payrollerrors.ErrInvalidID); err != nil {
		return AdjustmentResponse{}, err
	}

	var adj *Adjustment
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		adj, err = repo.FindAdjustment(ctx, id)
		if err != nil {
			return mapRecordError(err, payrollerrors.ErrAdjustmentNotFound)
		}
		if _, err := lockOpenPeriod(ctx, repo, adj.PeriodID.String()); err != nil {
			return err
		}
		if adj.Status == StatusVoid {
			return payrollerrors.ErrAlreadyVoid
		}

		now := contextutil.Now(ctx).UTC()
		reason := strings.TrimSpace(req.Reason)
		adj.Status = StatusVoid
		adj.VoidedAt = &now
		adj.VoidedBy = actorPtr(viewer)
		adj.VoidReason = &reason
		return repo.UpdateAdjustment(ctx, adj)
	})
	if err != nil {
		return AdjustmentResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_ADJUSTMENT_VOIDED",
		Entity:   "payroll_adjustment",
		EntityID: id,
		Message:  "adjustment voided: " + *adj.VoidReason,
	})
	return mapAdjustment(*adj), nil
}

func (s *service) ListPayments(ctx context.Context, f RecordFilter) ([]PaymentResponse, error) {
	pays, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(pays))
	for i, p := range pays {
		out[i] = mapPayment(p)
	}
	return out, nil
}

func (s *service) CreatePayment(ctx context.Context, viewer domain.Viewer, req CreatePaymentRequest) (PaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return PaymentResponse{}, payrollerrors.ErrInvalidAmount
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return PaymentResponse{}, payrollerrors.ErrInvalidUserID
	}
	periodID, err := uuid.Parse(req.PeriodID)
	if err != nil {
		return PaymentResponse{}, payrollerrors.ErrInvalidPeriodID
	}
	paidAt := contextutil.Now(ctx).UTC()
	if req.PaidAt != nil && *req.PaidAt != "" {
		t, err := time.Parse(time.RFC3339, *req.PaidAt)
		if err != nil {
			return PaymentResponse{}, payrollerrors.ErrInvalidDateFormat
		}
		paidAt = t.UTC()
	}

	pay := &Payment{
		ID:        uuid.New(),
		UserID:    userID,
		PeriodID:  periodID,
		Amount:    req.Amount.Round(2),
		Notes:     trimmedPtr(req.Notes),
		Status:    StatusCompleted,
		PaidAt:    paidAt,
		CreatedBy: actorPtr(viewer),
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := lockOpenPeriod(ctx, repo, req.PeriodID); err != nil {
			return err
		}
		if err := ensureUser(ctx, repo, userID); err != nil {
			return err
		}
		return repo.CreatePayment(ctx, pay)
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_PAYMENT_CREATED",
		Entity:   "payroll_payment",
		EntityID: pay.ID.String(),
		Message:  "payment " + pay.Amount.StringFixed(2) + " recorded",
		Meta:     map[string]any{"user_id": req.UserID, "period_id": req.PeriodID},
	})
	return mapPayment(*pay), nil
}

func (s *service) VoidPayment(ctx context.Context, viewer domain.Viewer, id string, req VoidRequest) (PaymentResponse, error) {
	if err := parseUUID(id, payrollerrors.ErrInvalidID); err != nil {
		return PaymentResponse{}, err
	}

	var pay *Payment
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		pay, err = repo.FindPayment(ctx, id)
		if err != nil {
			return mapRecordError(err, payrollerrors.ErrPaymentNotFound)
		}
		if _, err := lockOpenPeriod(ctx, repo, pay.PeriodID.String()); err != nil {
			return err
		}
		if pay.Status == StatusVoid {
			return payrollerrors.ErrAlreadyVoid
		}

		now := contextutil.Now(ctx).UTC()
		reason := strings.TrimSpace(req.Reason)
		pay.Status = StatusVoid
		pay.VoidedAt = &now
		pay.VoidedBy = actorPtr(viewer)
		pay.VoidReason = &reason
		return repo.UpdatePayment(ctx, pay)
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_PAYMENT_VOIDED",
		Entity:   "payroll_payment",
		EntityID: id,
		Message:  "payment voided: " + *pay.VoidReason,
	})
	return mapPayment(*pay), nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
