package vehicle

import (
	"context"
	"strings"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/shared/contextutil"
	vehicleerrors "go-fleetpay/internal/vehicle/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssignmentChecker counts active shipments that use a vehicle.
type AssignmentChecker interface {
	CountActiveByVehicle(ctx context.Context, vehicleID string) (int64, error)
}

//go:generate mockgen -source=vehicle_service.go -destination=mock/vehicle_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, f ListFilter) ([]VehicleResponse, int64, error)
	GetByID(ctx context.Context, id string) (VehicleResponse, error)
	Create(ctx context.Context, req CreateVehicleRequest) (VehicleResponse, error)
	Update(ctx context.Context, id string, req UpdateVehicleRequest) (VehicleResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo        Repository
	assignments AssignmentChecker
	recorder    activity.Recorder
	logger      *zap.Logger
}

func NewService(repo Repository, assignments AssignmentChecker, recorder activity.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("vehicle.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("vehicle.service")
	}
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{repo: repo, assignments: assignments, recorder: recorder, logger: l}
}

func normalizePlate(p string) string {
	return strings.ToUpper(strings.Join(strings.Fields(p), " "))
}

func (s *service) List(ctx context.Context, f ListFilter) ([]VehicleResponse, int64, error) {
	vehicles, total, err := s.repo.FindAll(ctx, RepoFilter{
		VehicleType: strings.TrimSpace(f.VehicleType),
		Q:           strings.TrimSpace(f.Q),
		Active:      f.Active,
	}, f.Page, f.PageSize)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		resp[i] = mapToResponse(v)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (VehicleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return VehicleResponse{}, vehicleerrors.ErrInvalidVehicleID
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return VehicleResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*v), nil
}

func (s *service) Create(ctx context.Context, req CreateVehicleRequest) (VehicleResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	v := &Vehicle{
		ID:          uuid.New(),
		PlateNumber: normalizePlate(req.PlateNumber),
		VehicleType: strings.TrimSpace(req.VehicleType),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		l.Warn("create vehicle persist failed", zap.String("plate", v.PlateNumber), zap.Error(err))
		return VehicleResponse{}, mapRepositoryError(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:   "VEHICLE_CREATED",
		Entity:   "vehicle",
		EntityID: v.ID.String(),
		Message:  "vehicle " + v.PlateNumber + " registered",
	})
	return mapToResponse(*v), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateVehicleRequest) (VehicleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return VehicleResponse{}, vehicleerrors.ErrInvalidVehicleID
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return VehicleResponse{}, mapRepositoryError(err)
	}

	if req.IsActive != nil && !*req.IsActive && v.IsActive {
		if err := s.ensureNoActiveShipments(ctx, id); err != nil {
			return VehicleResponse{}, err
		}
	}

	if req.PlateNumber != nil {
		v.PlateNumber = normalizePlate(*req.PlateNumber)
	}
	if req.VehicleType != nil {
		v.VehicleType = strings.TrimSpace(*req.VehicleType)
	}
	if req.Description != nil {
		v.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return VehicleResponse{}, mapRepositoryError(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:   "VEHICLE_UPDATED",
		Entity:   "vehicle",
		EntityID: id,
		Message:  "vehicle " + v.PlateNumber + " updated",
	})
	return mapToResponse(*v), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return vehicleerrors.ErrInvalidVehicleID
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.ensureNoActiveShipments(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:   "VEHICLE_DELETED",
		Entity:   "vehicle",
		EntityID: id,
		Message:  "vehicle " + v.PlateNumber + " deleted",
	})
	return nil
}

func (s *service) ensureNoActiveShipments(ctx context.Context, id string) error {
	if s.assignments == nil {
		return nil
	}
	n, err := s.assignments.CountActiveByVehicle(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return vehicleerrors.ErrHasActiveShipments
	}
	return nil
}

func mapToResponse(v Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:          v.ID.String(),
		PlateNumber: v.PlateNumber,
		VehicleType: v.VehicleType,
		Description: v.Description,
		IsActive:    v.IsActive,
	}
}
