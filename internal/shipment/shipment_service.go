package shipment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/events"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/shared/civil"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/counter"
	"go-fleetpay/internal/shared/database"
	shipmenterrors "go-fleetpay/internal/shipment/errors"
	"go-fleetpay/internal/user"
	"go-fleetpay/internal/vehicle"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const referenceCounterType = "shipment"

//go:generate mockgen -source=shipment_service.go -destination=mock/shipment_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, viewer domain.Viewer, req CreateShipmentRequest) (ShipmentResponse, error)
	List(ctx context.Context, viewer domain.Viewer, f ListFilter) ([]ShipmentResponse, error)
	GetByID(ctx context.Context, viewer domain.Viewer, id string) (ShipmentResponse, error)
	Update(ctx context.Context, viewer domain.Viewer, id string, req UpdateShipmentRequest) (ShipmentResponse, error)
	Cancel(ctx context.Context, viewer domain.Viewer, id string) (ShipmentResponse, error)
	SetArchived(ctx context.Context, viewer domain.Viewer, id string, archived bool) (ShipmentResponse, error)
	Delete(ctx context.Context, viewer domain.Viewer, id string) error
	UpdateStatus(ctx context.Context, viewer domain.Viewer, id string, req UpdateStatusRequest) (UpdateStatusResponse, error)
	GetStatus(ctx context.Context, viewer domain.Viewer, id string) (StatusSnapshot, error)
	ListLogs(ctx context.Context, viewer domain.Viewer, id string) ([]StatusLogResponse, error)
	Export(ctx context.Context, viewer domain.Viewer, f ListFilter) ([]byte, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	users    user.Repository
	vehicles vehicle.Repository
	counter  counter.Repository
	outbox   kafka.OutboxRepository
	cache    *StatusCache
	recorder activity.Recorder
	loc      *time.Location
	logger   *zap.Logger
}

type Deps struct {
	DB       *gorm.DB
	Repo     Repository
	Users    user.Repository
	Vehicles vehicle.Repository
	Counter  counter.Repository
	Outbox   kafka.OutboxRepository
	Cache    *StatusCache
	Recorder activity.Recorder
	Location *time.Location
}

func NewService(d Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("shipment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shipment.service")
	}
	if d.Recorder == nil {
		d.Recorder = activity.Nop{}
	}
	if d.Cache == nil {
		d.Cache = NewStatusCache(nil, l)
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &service{
		db:       d.DB,
		repo:     d.Repo,
		users:    d.Users,
		vehicles: d.Vehicles,
		counter:  d.Counter,
		outbox:   d.Outbox,
		cache:    d.Cache,
		recorder: d.Recorder,
		loc:      d.Location,
		logger:   l,
	}
}

func (s *service) today(ctx context.Context) time.Time {
	return civil.Today(ctx, s.loc)
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shipmenterrors.ErrInvalidShipmentID
	}
	return nil
}

// visible hides other crews' shipments from drivers and helpers.
func visible(viewer domain.Viewer, sh Shipment) bool {
	if viewer.Role.IsCrew() {
		return sh.HasCrew(viewer.UserID)
	}
	return true
}

func (s *service) load(ctx context.Context, viewer domain.Viewer, id string) (*Shipment, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !visible(viewer, *sh) {
		return nil, shipmenterrors.ErrShipmentNotFound
	}
	return sh, nil
}

func parseDates(loading, delivery *string) (*time.Time, *time.Time, error) {
	ld, err := civil.ParsePtr(loading)
	if err != nil {
		return nil, nil, shipmenterrors.ErrInvalidDate
	}
	dd, err := civil.ParsePtr(delivery)
	if err != nil {
		return nil, nil, shipmenterrors.ErrInvalidDate
	}
	return ld, dd, nil
}

func checkDateRange(loading, delivery *time.Time) error {
	if loading != nil && delivery != nil && loading.After(*delivery) {
		return shipmenterrors.ErrInvalidDateRange
	}
	return nil
}

func (s *service) checkVehicle(ctx context.Context, id string) (uuid.UUID, error) {
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, shipmenterrors.ErrVehicleUnavailable
		}
		return uuid.Nil, err
	}
	if !v.IsActive {
		return uuid.Nil, shipmenterrors.ErrVehicleUnavailable
	}
	return v.ID, nil
}

func (s *service) checkCrew(ctx context.Context, id string, role domain.Role, invalid error) (uuid.UUID, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, invalid
		}
		return uuid.Nil, err
	}
	if !u.IsActive || u.Role != string(role) {
		return uuid.Nil, invalid
	}
	return u.ID, nil
}

func buildDrops(shipmentID uuid.UUID, reqs []DropRequest, destName, destLocation string) []Drop {
	if len(reqs) == 0 {
		reqs = []DropRequest{{Name: destName, Location: destLocation}}
	}
	drops := make([]Drop, len(reqs))
	for i, r := range reqs {
		drops[i] = Drop{
			ID:         uuid.New(),
			ShipmentID: shipmentID,
			Sequence:   i + 1,
			Name:       strings.TrimSpace(r.Name),
			Location:   strings.TrimSpace(r.Location),
		}
	}
	return drops
}

func (s *service) Create(ctx context.Context, viewer domain.Viewer, req CreateShipmentRequest) (ShipmentResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	loading, delivery, err := parseDates(req.LoadingDate, req.DeliveryDate)
	if err != nil {
		return ShipmentResponse{}, err
	}
	if err := checkDateRange(loading, delivery); err != nil {
		return ShipmentResponse{}, err
	}

	vehicleID, err := s.checkVehicle(ctx, req.VehicleID)
	if err != nil {
		return ShipmentResponse{}, err
	}
	driverID, err := s.checkCrew(ctx, req.DriverID, domain.RoleDriver, shipmenterrors.ErrDriverInvalid)
	if err != nil {
		return ShipmentResponse{}, err
	}
	var helperID *uuid.UUID
	if req.HelperID != nil && *req.HelperID != "" {
		id, err := s.checkCrew(ctx, *req.HelperID, domain.RoleHelper, shipmenterrors.ErrHelperInvalid)
		if err != nil {
			return ShipmentResponse{}, err
		}
		helperID = &id
	}

	sh := &Shipment{
		ID:                  uuid.New(),
		DestinationName:     strings.TrimSpace(req.DestinationName),
		DestinationLocation: strings.TrimSpace(req.DestinationLocation),
		VehicleID:           vehicleID,
		DriverID:            driverID,
		HelperID:            helperID,
		LoadingDate:         loading,
		DeliveryDate:        delivery,
		CurrentStatus:       phase.Pending,
	}
	if creator, err := uuid.Parse(viewer.UserID); err == nil {
		sh.CreatedBy = &creator
	}
	sh.Drops = buildDrops(sh.ID, req.Drops, sh.DestinationName, sh.DestinationLocation)

	now := contextutil.Now(ctx).In(s.loc)
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		seq, err := s.counter.WithTx(tx).GetNextValue(ctx, referenceCounterType, now.Format("2006"))
		if err != nil {
			return err
		}
		sh.Reference = fmt.Sprintf("SHP-%s-%06d", now.Format("2006"), seq)
		return s.repo.WithTx(tx).Create(ctx, sh)
	})
	if err != nil {
		l.Error("create shipment failed", zap.Error(err))
		return ShipmentResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "SHIPMENT_CREATED",
		Entity:   "shipment",
		EntityID: sh.ID.String(),
		Message:  "shipment " + sh.Reference + " created",
		Meta:     map[string]any{"drops": len(sh.Drops)},
	})
	l.Info("create shipment success", zap.String("shipment_id", sh.ID.String()), zap.String("reference", sh.Reference))

	return mapToResponse(*sh, s.today(ctx)), nil
}

func (s *service) List(ctx context.Context, viewer domain.Viewer, f ListFilter) ([]ShipmentResponse, error) {
	shipments, err := s.filter(ctx, viewer, f)
	if err != nil {
		return nil, err
	}
	today := s.today(ctx)
	out := make([]ShipmentResponse, len(shipments))
	for i, sh := range shipments {
		out[i] = mapToResponse(sh, today)
	}
	return out, nil
}

// filter loads the shipments visible to viewer and applies the category
// filter, which depends on today and so runs in memory.
func (s *service) filter(ctx context.Context, viewer domain.Viewer, f ListFilter) ([]Shipment, error) {
	var category Category
	if f.Category != "" {
		c, ok := ParseCategory(f.Category)
		if !ok {
			return nil, shipmenterrors.ErrInvalidCategory
		}
		category = c
	}

	archived := f.Archived
	rf := RepoFilter{DriverID: f.DriverID, Archived: &archived, Q: strings.TrimSpace(f.Q)}
	if viewer.Role.IsCrew() {
		rf.CrewID = viewer.UserID
	}

	shipments, err := s.repo.FindAll(ctx, rf)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return shipments, nil
	}

	today := s.today(ctx)
	out := make([]Shipment, 0, len(shipments))
	for _, sh := range shipments {
		if Classify(sh, today) == category {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, viewer domain.Viewer, id string) (ShipmentResponse, error) {
	sh, err := s.load(ctx, viewer, id)
	if err != nil {
		return ShipmentResponse{}, err
	}
	logs, err := s.repo.ListLogs(ctx, id)
	if err != nil {
		return ShipmentResponse{}, err
	}

	resp := mapToResponse(*sh, s.today(ctx))
	resp.Timeline = mapTimeline(BuildTimeline(sh.Drops, logs))
	return resp, nil
}

func (s *service) Update(ctx context.Context, viewer domain.Viewer, id string, req UpdateShipmentRequest) (ShipmentResponse, error) {
	current, err := s.load(ctx, viewer, id)
	if err != nil {
		return ShipmentResponse{}, err
	}
	if current.CurrentStatus.IsTerminal() {
		return ShipmentResponse{}, shipmenterrors.ErrTerminal
	}

	loading, delivery, err := parseDates(req.LoadingDate, req.DeliveryDate)
	if err != nil {
		return ShipmentResponse{}, err
	}

	// crew and vehicle lookups go through their own repositories, so they are
	// resolved before the row lock is taken
	var vehicleID, driverID, helperID *uuid.UUID
	if req.VehicleID != nil && *req.VehicleID != current.VehicleID.String() {
		v, err := s.checkVehicle(ctx, *req.VehicleID)
		if err != nil {
			return ShipmentResponse{}, err
		}
		vehicleID = &v
	}
	if req.DriverID != nil && *req.DriverID != current.DriverID.String() {
		d, err := s.checkCrew(ctx, *req.DriverID, domain.RoleDriver, shipmenterrors.ErrDriverInvalid)
		if err != nil {
			return ShipmentResponse{}, err
		}
		driverID = &d
	}
	if !req.ClearHelper && req.HelperID != nil {
		h, err := s.checkCrew(ctx, *req.HelperID, domain.RoleHelper, shipmenterrors.ErrHelperInvalid)
		if err != nil {
			return ShipmentResponse{}, err
		}
		helperID = &h
	}

	var sh *Shipment
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		sh, err = lockVisible(ctx, repo, viewer, id)
		if err != nil {
			return err
		}
		if sh.CurrentStatus.IsTerminal() {
			return shipmenterrors.ErrTerminal
		}

		if req.LoadingDate != nil {
			sh.LoadingDate = loading
		}
		if req.DeliveryDate != nil {
			sh.DeliveryDate = delivery
		}
		if err := checkDateRange(sh.LoadingDate, sh.DeliveryDate); err != nil {
			return err
		}
		if req.DestinationName != nil {
			sh.DestinationName = strings.TrimSpace(*req.DestinationName)
		}
		if req.DestinationLocation != nil {
			sh.DestinationLocation = strings.TrimSpace(*req.DestinationLocation)
		}
		if vehicleID != nil {
			sh.VehicleID = *vehicleID
		}
		if driverID != nil {
			sh.DriverID = *driverID
		}
		if req.ClearHelper {
			sh.HelperID = nil
		} else if helperID != nil {
			sh.HelperID = helperID
		}

		if len(req.Drops) > 0 {
			n, err := repo.CountLogs(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return shipmenterrors.ErrDropsLocked
			}
			drops := buildDrops(sh.ID, req.Drops, sh.DestinationName, sh.DestinationLocation)
			if err := repo.ReplaceDrops(ctx, sh, drops); err != nil {
				return err
			}
		}
		return repo.UpdateDetails(ctx, sh)
	})
	if err != nil {
		return ShipmentResponse{}, mapRepositoryError(err)
	}

	s.cache.Invalidate(ctx, id)
	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "SHIPMENT_UPDATED",
		Entity:   "shipment",
		EntityID: id,
		Message:  "shipment " + sh.Reference + " updated",
	})
	return mapToResponse(*sh, s.today(ctx)), nil
}

// lockVisible reads the shipment FOR UPDATE and hides it from crew members
// who are not assigned to it.
func lockVisible(ctx context.Context, repo Repository, viewer domain.Viewer, id string) (*Shipment, error) {
	sh, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !visible(viewer, *sh) {
		return nil, shipmenterrors.ErrShipmentNotFound
	}
	return sh, nil
}

func (s *service) Cancel(ctx context.Context, viewer domain.Viewer, id string) (ShipmentResponse, error) {
	if err := parseID(id); err != nil {
		return ShipmentResponse{}, err
	}

	var sh *Shipment
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		sh, err = repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		switch sh.CurrentStatus {
		case phase.Completed:
			return shipmenterrors.ErrAlreadyCompleted
		case phase.Cancelled:
			return shipmenterrors.ErrTerminal
		}

		sh.CurrentStatus = phase.Cancelled
		if err := repo.Update(ctx, sh); err != nil {
			return err
		}

		evt, err := kafka.NewEvent(ctx, "shipment", id, events.ShipmentStatusChanged, events.ShipmentStatusChangedTopic,
			events.ShipmentStatusChangedEvent{
				EventType:  events.ShipmentStatusChanged,
				RequestID:  contextutil.GetRequestID(ctx),
				ShipmentID: id,
				Phase:      phase.Cancelled.String(),
				Status:     phase.Cancelled.String(),
				ActorID:    viewer.UserID,
				OccurredAt: contextutil.Now(ctx).UTC(),
			})
		if err != nil {
			return err
		}
		return s.outbox.WithTx(tx).Create(ctx, evt)
	})
	if err != nil {
		return ShipmentResponse{}, err
	}

	s.cache.Invalidate(ctx, id)
	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "SHIPMENT_CANCELLED",
		Entity:   "shipment",
		EntityID: id,
		Message:  "shipment " + sh.Reference + " cancelled",
	})
	return mapToResponse(*sh, s.today(ctx)), nil
}

func (s *service) SetArchived(ctx context.Context, viewer domain.Viewer, id string, archived bool) (ShipmentResponse, error) {
	if err := parseID(id); err != nil {
		return ShipmentResponse{}, err
	}

	var sh *Shipment
	changed := false
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		sh, err = lockVisible(ctx, repo, viewer, id)
		if err != nil {
			return err
		}
		if sh.IsArchived == archived {
			return nil
		}
		if err := repo.SetArchived(ctx, id, archived); err != nil {
			return err
		}
		sh.IsArchived = archived
		changed = true
		return nil
	})
	if err != nil {
		return ShipmentResponse{}, mapRepositoryError(err)
	}

	if changed {
		s.cache.Invalidate(ctx, id)

		action := "SHIPMENT_ARCHIVED"
		if !archived {
			action = "SHIPMENT_UNARCHIVED"
		}
		s.recorder.Record(ctx, activity.Entry{
			ActorID:  viewer.UserID,
			Action:   action,
			Entity:   "shipment",
			EntityID: id,
			Message:  "shipment " + sh.Reference + " " + strings.ToLower(strings.TrimPrefix(action, "SHIPMENT_")),
		})
	}
	return mapToResponse(*sh, s.today(ctx)), nil
}

func (s *service) Delete(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	var sh *Shipment
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		sh, err = lockVisible(ctx, repo, viewer, id)
		if err != nil {
			return err
		}
		if sh.CurrentStatus != phase.Pending {
			return shipmenterrors.ErrNotPending
		}
		n, err := repo.CountLogs(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shipmenterrors.ErrNotPending
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.cache.Invalidate(ctx, id)
	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "SHIPMENT_DELETED",
		Entity:   "shipment",
		EntityID: id,
		Message:  "shipment " + sh.Reference + " deleted",
	})
	return nil
}
