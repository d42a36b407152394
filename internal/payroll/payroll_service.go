package payroll

import (
	"context"
	"strings"
	"time"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
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

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CreatePeriod(ctx context.Context, viewer domain.Viewer, req CreatePeriodRequest) (PeriodResponse, error)
	ListPeriods(ctx context.Context) ([]PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	Close(ctx context.Context, viewer domain.Viewer, periodID string) (PeriodResponse, error)

	Generate(ctx context.Context, viewer domain.Viewer, periodID string) (GenerateResult, error)
	AccrueShipment(ctx context.Context, shipmentID string) (int, error)

	Summary(ctx context.Context, periodID string) ([]SummaryRow, error)
	Ledger(ctx context.Context, viewer domain.Viewer, periodID, userID string) (LedgerResponse, error)
	Export(ctx context.Context, periodID string) ([]byte, error)
	Payslip(ctx context.Context, viewer domain.Viewer, periodID, userID string) ([]byte, error)

	ListAdjustments(ctx context.Context, f RecordFilter) ([]AdjustmentResponse, error)
	CreateAdjustment(ctx context.Context, viewer domain.Viewer, req CreateAdjustmentRequest) (AdjustmentResponse, error)
	VoidAdjustment(ctx context.Context, viewer domain.Viewer, id string, req VoidRequest) (AdjustmentResponse, error)

	ListPayments(ctx context.Context, f RecordFilter) ([]PaymentResponse, error)
	CreatePayment(ctx context.Context, viewer domain.Viewer, req CreatePaymentRequest) (PaymentResponse, error)
	VoidPayment(ctx context.Context, viewer domain.Viewer, id string, req VoidRequest) (PaymentResponse, error)
}

// Defaults prices a trip when no rate matches.
type Defaults struct {
	DriverFee decimal.Decimal
	HelperFee decimal.Decimal
}

type Deps struct {
	DB       *gorm.DB
	Repo     Repository
	Rates    rate.Repository
	Outbox   kafka.OutboxRepository
	Recorder activity.Recorder
	Defaults Defaults
	Location *time.Location
}

type service struct {
	db       *gorm.DB
	repo     Repository
	rates    rate.Repository
	outbox   kafka.OutboxRepository
	recorder activity.Recorder
	defaults Defaults
	loc      *time.Location
	logger   *zap.Logger
}

func NewService(d Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if d.Recorder == nil {
		d.Recorder = activity.Nop{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Defaults.DriverFee.IsZero() && d.Defaults.HelperFee.IsZero() {
		d.Defaults = Defaults{DriverFee: decimal.NewFromInt(600), HelperFee: decimal.NewFromInt(400)}
	}
	return &service{
		db:       d.DB,
		repo:     d.Repo,
		rates:    d.Rates,
		outbox:   d.Outbox,
		recorder: d.Recorder,
		defaults: d.Defaults,
		loc:      d.Location,
		logger:   l,
	}
}

func parseUUID(id string, invalid error) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalid
	}
	return nil
}

func actorPtr(viewer domain.Viewer) *uuid.UUID {
	id, err := uuid.Parse(viewer.UserID)
	if err != nil {
		return nil
	}
	return &id
}

func (s *service) CreatePeriod(ctx context.Context, viewer domain.Viewer, req CreatePeriodRequest) (PeriodResponse, error) {
	start, err := civil.Parse(req.StartDate)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidDateFormat
	}
	end, err := civil.Parse(req.EndDate)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return PeriodResponse{}, payrollerrors.ErrInvalidDateRange
	}

	p := &Period{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
		Status:    PeriodOpen,
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		overlap, err := repo.HasOverlap(ctx, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return payrollerrors.ErrPeriodOverlap
		}
		return mapPeriodError(repo.CreatePeriod(ctx, p))
	})
	if err != nil {
		return PeriodResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_PERIOD_CREATED",
		Entity:   "payroll_period",
		EntityID: p.ID.String(),
		Message:  "payroll period " + p.Name + " created",
	})
	return mapPeriod(*p), nil
}

func (s *service) ListPeriods(ctx context.Context) ([]PeriodResponse, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		out[i] = mapPeriod(p)
	}
	return out, nil
}

func (s *service) GetPeriod(ctx context.Context, id string) (PeriodResponse, error) {
	p, err := s.findPeriod(ctx, s.repo, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	return mapPeriod(*p), nil
}

func (s *service) findPeriod(ctx context.Context, repo Repository, id string) (*Period, error) {
	if err := parseUUID(id, payrollerrors.ErrInvalidPeriodID); err != nil {
		return nil, err
	}
	p, err := repo.FindPeriod(ctx, id)
	if err != nil {
		return nil, mapPeriodError(err)
	}
	return p, nil
}

// lockOpenPeriod locks the period row and rejects closed periods.
func lockOpenPeriod(ctx context.Context, repo Repository, id string) (*Period, error) {
	p, err := repo.FindPeriodForUpdate(ctx, id)
	if err != nil {
		return nil, mapPeriodError(err)
	}
	if p.IsClosed() {
		return nil, payrollerrors.ErrPeriodClosed
	}
	return p, nil
}

func (s *service) Summary(ctx context.Context, periodID string) ([]SummaryRow, error) {
	if _, err := s.findPeriod(ctx, s.repo, periodID); err != nil {
		return nil, err
	}
	return s.summary(ctx, s.repo, periodID)
}

func (s *service) summary(ctx context.Context, repo Repository, periodID string) ([]SummaryRow, error) {
	rows, err := repo.ListLineItems(ctx, periodID, "")
	if err != nil {
		return nil, err
	}
	f := RecordFilter{PeriodID: periodID}
	adjs, err := repo.ListAdjustments(ctx, f)
	if err != nil {
		return nil, err
	}
	pays, err := repo.ListPayments(ctx, f)
	if err != nil {
		return nil, err
	}

	lines := lineItems(rows)
	people, err := repo.FindPeople(ctx, personIDs(lines, adjs, pays))
	if err != nil {
		return nil, err
	}
	return summarize(people, lines, adjs, pays), nil
}

func (s *service) Ledger(ctx context.Context, viewer domain.Viewer, periodID, userID string) (LedgerResponse, error) {
	if err := parseUUID(userID, payrollerrors.ErrInvalidUserID); err != nil {
		return LedgerResponse{}, err
	}
	if viewer.Role.IsCrew() && viewer.UserID != userID {
		return LedgerResponse{}, payrollerrors.ErrForbidden
	}
	period, err := s.findPeriod(ctx, s.repo, periodID)
	if err != nil {
		return LedgerResponse{}, err
	}

	uid := uuid.MustParse(userID)
	people, err := s.repo.FindPeople(ctx, []uuid.UUID{uid})
	if err != nil {
		return LedgerResponse{}, err
	}
	if len(people) == 0 {
		return LedgerResponse{}, payrollerrors.ErrUserNotFound
	}

	rows, err := s.repo.ListLineItems(ctx, periodID, userID)
	if err != nil {
		return LedgerResponse{}, err
	}
	f := RecordFilter{PeriodID: periodID, UserID: userID}
	adjs, err := s.repo.ListAdjustments(ctx, f)
	if err != nil {
		return LedgerResponse{}, err
	}
	pays, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return LedgerResponse{}, err
	}

	resp := LedgerResponse{
		Period:      mapPeriod(*period),
		Summary:     emptyRow(people[0]),
		LineItems:   make([]LineItemResponse, len(rows)),
		Adjustments: make([]AdjustmentResponse, len(adjs)),
		Payments:    make([]PaymentResponse, len(pays)),
	}
	if sums := summarize(people, lineItems(rows), adjs, pays); len(sums) == 1 {
		resp.Summary = sums[0]
	}
	for i, r := range rows {
		resp.LineItems[i] = mapLineItem(r)
	}
	for i, a := range adjs {
		resp.Adjustments[i] = mapAdjustment(a)
	}
	for i, p := range pays {
		resp.Payments[i] = mapPayment(p)
	}
	return resp, nil
}

func (s *service) Close(ctx context.Context, viewer domain.Viewer, periodID string) (PeriodResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("period_id", periodID))
	if err := parseUUID(periodID, payrollerrors.ErrInvalidPeriodID); err != nil {
		return PeriodResponse{}, err
	}

	var period *Period
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		period, err = lockOpenPeriod(ctx, repo, periodID)
		if err != nil {
			return err
		}

		now := contextutil.Now(ctx).UTC()
		period.Status = PeriodClosed
		period.ClosedAt = &now
		period.ClosedBy = actorPtr(viewer)
		if err := repo.UpdatePeriod(ctx, period); err != nil {
			return err
		}
		return s.enqueueClosed(ctx, tx, period, viewer.UserID)
	})
	if err != nil {
		l.Warn("close period rejected", zap.Error(err))
		return PeriodResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "PAYROLL_PERIOD_CLOSED",
		Entity:   "payroll_period",
		EntityID: periodID,
		Message:  "payroll period " + period.Name + " closed",
	})
	l.Info("payroll period closed")
	return mapPeriod(*period), nil
}
