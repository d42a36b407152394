package rate

import (
	"context"
	"strings"

	"go-fleetpay/internal/activity"
	rateerrors "go-fleetpay/internal/rate/errors"
	"go-fleetpay/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=rate_service.go -destination=mock/rate_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, f ListFilter) ([]RateResponse, int64, error)
	GetByID(ctx context.Context, id string) (RateResponse, error)
	Create(ctx context.Context, req CreateRateRequest) (RateResponse, error)
	Update(ctx context.Context, id string, req UpdateRateRequest) (RateResponse, error)
	Delete(ctx context.Context, id string) error
	Match(ctx context.Context, destination, vehicleType string) (MatchResponse, error)
}

type service struct {
	repo     Repository
	recorder activity.Recorder
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(repo Repository, recorder activity.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("rate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rate.service")
	}
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{repo: repo, recorder: recorder, sf: &singleflight.Group{}, logger: l}
}

func validateFees(fees ...decimal.Decimal) error {
	for _, f := range fees {
		if f.IsNegative() {
			return rateerrors.ErrNegativeFee
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]RateResponse, int64, error) {
	rates, total, err := s.repo.FindAll(ctx, RepoFilter{
		VehicleType: strings.TrimSpace(f.VehicleType),
		Q:           strings.TrimSpace(f.Q),
	}, f.Page, f.PageSize)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]RateResponse, len(rates))
	for i, r := range rates {
		resp[i] = mapToResponse(r)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (RateResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RateResponse{}, rateerrors.ErrInvalidRateID
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return RateResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*r), nil
}

func (s *service) Create(ctx context.Context, req CreateRateRequest) (RateResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	r := &PayrollRate{
		ID:            uuid.New(),
		RouteCluster:  strings.TrimSpace(req.RouteCluster),
		VehicleType:   strings.TrimSpace(req.VehicleType),
		DriverBaseFee: req.DriverBaseFee.Round(2),
		HelperBaseFee: req.HelperBaseFee.Round(2),
		FoodAllowance: req.FoodAllowance.Round(2),
	}
	if err := s.validate(ctx, r, ""); err != nil {
		return RateResponse{}, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		l.Warn("create rate persist failed",
			zap.String("route_cluster", r.RouteCluster),
			zap.String("vehicle_type", r.VehicleType),
			zap.Error(err),
		)
		return RateResponse{}, mapRepositoryError(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:   "RATE_CREATED",
		Entity:   "rate",
		EntityID: r.ID.String(),
		Message:  "rate " + r.RouteCluster + " / " + r.VehicleType + " created",
	})
	return mapToResponse(*r), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRateRequest) (RateResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RateResponse{}, rateerrors.ErrInvalidRateID
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return RateResponse{}, mapRepositoryError(err)
	}

	if req.RouteCluster != nil {
		r.RouteCluster = strings.TrimSpace(*req.RouteCluster)
	}
	if req.VehicleType != nil {
		r.VehicleType = strings.TrimSpace(*req.VehicleType)
	}
	if req.DriverBaseFee != nil {
		r.DriverBaseFee = req.DriverBaseFee.Round(2)
	}
	if req.HelperBaseFee != nil {
		r.HelperBaseFee = req.HelperBaseFee.Round(2)
	}
	if req.FoodAllowance != nil {
		r.FoodAllowance = req.FoodAllowance.Round(2)
	}
	if err := s.validate(ctx, r, id); err != nil {
		return RateResponse{}, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return RateResponse{}, mapRepositoryError(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:   "RATE_UPDATED",
		Entity:   "rate",
		EntityID: id,
		Message:  "rate " + r.RouteCluster + " / " + r.VehicleType + " updated",
	})
	return mapToResponse(*r), nil
}

// validate checks fees and the case-insensitive (route_cluster, vehicle_type) pair.
func (s *service) validate(ctx context.Context, r *PayrollRate, excludeID string) error {
	if r.RouteCluster == "" || r.VehicleType == "" {
		return rateerrors.ErrBlankField
	}
	if err := validateFees(r.DriverBaseFee, r.HelperBaseFee, r.FoodAllowance); err != nil {
		return err
	}
	exists, err := s.repo.ExistsPair(ctx, r.RouteCluster, r.VehicleType, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return rateerrors.ErrDuplicateRate
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return rateerrors.ErrInvalidRateID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.recorder.Record(ctx, activity.Entry{
		Action:   "RATE_DELETED",
		Entity:   "rate",
		EntityID: id,
		Message:  "rate deleted",
	})
	return nil
}

// Match resolves the rate a shipment to destination with vehicleType would be
// paid at. Concurrent lookups for the same vehicle type share one query.
func (s *service) Match(ctx context.Context, destination, vehicleType string) (MatchResponse, error) {
	key := strings.ToLower(strings.TrimSpace(vehicleType))
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.repo.FindByVehicleType(ctx, key)
	})
	if err != nil {
		return MatchResponse{}, err
	}

	r, ok := Match(v.([]PayrollRate), destination)
	if !ok {
		return MatchResponse{Matched: false}, nil
	}
	resp := mapToResponse(r)
	return MatchResponse{Matched: true, Rate: &resp}, nil
}

func mapToResponse(r PayrollRate) RateResponse {
	return RateResponse{
		ID:            r.ID.String(),
		RouteCluster:  r.RouteCluster,
		VehicleType:   r.VehicleType,
		DriverBaseFee: r.DriverBaseFee,
		HelperBaseFee: r.HelperBaseFee,
		FoodAllowance: r.FoodAllowance,
	}
}
