package shipment

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/events"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/shared/civil"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/database"
	shipmenterrors "go-fleetpay/internal/shipment/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errStepRecorded = errors.New("step already recorded")

// resolveStep maps the requested phase and drop to a timeline step key.
func resolveStep(sh *Shipment, p phase.Phase, dropID *string) (*uuid.UUID, error) {
	if p.Track() == phase.TrackWarehouse {
		if dropID != nil && *dropID != "" {
			return nil, shipmenterrors.ErrDropNotAllowed
		}
		return nil, nil
	}

	if dropID == nil || *dropID == "" {
		if len(sh.Drops) == 1 {
			id := sh.Drops[0].ID
			return &id, nil
		}
		return nil, shipmenterrors.ErrDropRequired
	}
	for _, d := range sh.Drops {
		if d.ID.String() == *dropID {
			id := d.ID
			return &id, nil
		}
	}
	return nil, shipmenterrors.ErrDropNotFound
}

func (s *service) UpdateStatus(ctx context.Context, viewer domain.Viewer, id string, req UpdateStatusRequest) (UpdateStatusResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("shipment_id", id), zap.String("phase", req.Phase))

	if err := parseID(id); err != nil {
		return UpdateStatusResponse{}, err
	}
	p, err := phase.Parse(req.Phase)
	if err != nil || !p.IsStep() {
		return UpdateStatusResponse{}, shipmenterrors.ErrInvalidPhase
	}
	actorID, err := uuid.Parse(viewer.UserID)
	if err != nil {
		return UpdateStatusResponse{}, shipmenterrors.ErrNotCrew
	}

	now := contextutil.Now(ctx)
	today := s.today(ctx)
	var (
		sh        *Shipment
		resp      UpdateStatusResponse
		completed bool
	)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		sh, err = repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if viewer.Role.IsCrew() && !sh.HasCrew(viewer.UserID) {
			return shipmenterrors.ErrNotCrew
		}

		dropID, err := resolveStep(sh, p, req.DropID)
		if err != nil {
			return err
		}
		key := StepKey(p, dropID)

		logs, err := repo.ListLogs(ctx, id)
		if err != nil {
			return err
		}
		steps := BuildTimeline(sh.Drops, logs)
		step, ok := findStep(steps, key)
		if !ok {
			return shipmenterrors.ErrDropNotFound
		}

		resp = UpdateStatusResponse{
			ShipmentID:     id,
			Phase:          p.String(),
			DropID:         idPtr(dropID),
			ClientActionID: req.ClientActionID,
		}

		if step.State == StepDone {
			return errStepRecorded
		}
		if sh.IsArchived {
			return shipmenterrors.ErrArchived
		}
		if sh.CurrentStatus.IsTerminal() {
			return shipmenterrors.ErrTerminal
		}
		if step.State != StepActive {
			return shipmenterrors.ErrStepNotActive
		}

		switch p.Track() {
		case phase.TrackWarehouse:
			if sh.LoadingDate != nil && today.Before(civil.Date(*sh.LoadingDate)) {
				return shipmenterrors.ErrTooEarly
			}
		case phase.TrackStore:
			if sh.DeliveryDate != nil && today.Before(civil.Date(*sh.DeliveryDate)) {
				return shipmenterrors.ErrTooEarly
			}
		}

		occurredAt := now.UTC()
		if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
			occurredAt = req.OccurredAt.UTC()
		}
		entry := &StatusLog{
			ID:             uuid.New(),
			ShipmentID:     sh.ID,
			DropID:         dropID,
			Phase:          p,
			StepKey:        key,
			OccurredAt:     occurredAt,
			ActorID:        actorID,
			Remarks:        trimmedPtr(req.Remarks),
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			ClientActionID: req.ClientActionID,
		}
		if err := repo.AppendLog(ctx, entry); err != nil {
			if database.IsUniqueViolation(err, "idx_status_logs_step") {
				return errStepRecorded
			}
			return err
		}

		completed = IsFinalStep(steps, step)
		if completed {
			sh.CurrentStatus = phase.Completed
			sh.CompletedAt = &occurredAt
		} else {
			sh.CurrentStatus = p
		}
		sh.CurrentDropID = dropID
		if err := repo.Update(ctx, sh); err != nil {
			return err
		}

		if err := s.enqueueStatusEvents(ctx, tx, sh, p, dropID, viewer.UserID, occurredAt, completed); err != nil {
			return err
		}

		steps = BuildTimeline(sh.Drops, append(logs, *entry))
		if next, ok := ActiveStep(steps); ok {
			ns := mapStep(next)
			resp.NextStep = &ns
		}
		return nil
	})

	if errors.Is(err, errStepRecorded) {
		l.Info("status step already recorded")
		resp.Applied = false
		resp.CurrentStatus = sh.CurrentStatus.String()
		resp.CurrentDropID = idPtr(sh.CurrentDropID)
		resp.Completed = sh.CurrentStatus == phase.Completed
		return resp, nil
	}
	if err != nil {
		l.Warn("update status rejected", zap.Error(err))
		return UpdateStatusResponse{}, err
	}

	s.cache.Invalidate(ctx, id)

	resp.Applied = true
	resp.CurrentStatus = sh.CurrentStatus.String()
	resp.CurrentDropID = idPtr(sh.CurrentDropID)
	resp.Completed = completed

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "SHIPMENT_STATUS_RECORDED",
		Entity:   "shipment",
		EntityID: id,
		Message:  "shipment " + sh.Reference + " recorded " + p.String(),
		Meta:     map[string]any{"phase": p.String(), "drop_id": resp.DropID, "completed": completed},
	})
	l.Info("status recorded", zap.Bool("completed", completed))

	return resp, nil
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

func (s *service) enqueueStatusEvents(
	ctx context.Context,
	tx *gorm.DB,
	sh *Shipment,
	p phase.Phase,
	dropID *uuid.UUID,
	actorID string,
	occurredAt time.Time,
	completed bool,
) error {
	outbox := s.outbox.WithTx(tx)
	id := sh.ID.String()

	changed := events.ShipmentStatusChangedEvent{
		EventType:  events.ShipmentStatusChanged,
		RequestID:  contextutil.GetRequestID(ctx),
		ShipmentID: id,
		Phase:      p.String(),
		Status:     sh.CurrentStatus.String(),
		ActorID:    actorID,
		OccurredAt: occurredAt,
	}
	if dropID != nil {
		changed.DropID = dropID.String()
	}
	evt, err := kafka.NewEvent(ctx, "shipment", id, events.ShipmentStatusChanged, events.ShipmentStatusChangedTopic, changed)
	if err != nil {
		return err
	}
	if err := outbox.Create(ctx, evt); err != nil {
		return err
	}

	if !completed {
		return nil
	}

	done := events.ShipmentCompletedEvent{
		EventType:   events.ShipmentCompleted,
		RequestID:   contextutil.GetRequestID(ctx),
		ShipmentID:  id,
		CompletedAt: occurredAt,
	}
	if d := civil.Format(sh.DeliveryDate); d != nil {
		done.DeliveryDate = *d
	}
	evt, err = kafka.NewEvent(ctx, "shipment", id, events.ShipmentCompleted, events.ShipmentCompletedTopic, done)
	if err != nil {
		return err
	}
	return outbox.Create(ctx, evt)
}

func (s *service) GetStatus(ctx context.Context, viewer domain.Viewer, id string) (StatusSnapshot, error) {
	if err := parseID(id); err != nil {
		return StatusSnapshot{}, err
	}
	snap, err := s.cache.Get(ctx, id, func(ctx context.Context) (StatusSnapshot, error) {
		sh, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return StatusSnapshot{}, mapRepositoryError(err)
		}
		return mapToSnapshot(*sh), nil
	})
	if err != nil {
		return StatusSnapshot{}, err
	}

	if viewer.Role.IsCrew() {
		isCrew := snap.DriverID == viewer.UserID || (snap.HelperID != nil && *snap.HelperID == viewer.UserID)
		if !isCrew {
			return StatusSnapshot{}, shipmenterrors.ErrShipmentNotFound
		}
	}
	return snap, nil
}

func (s *service) ListLogs(ctx context.Context, viewer domain.Viewer, id string) ([]StatusLogResponse, error) {
	if _, err := s.load(ctx, viewer, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListLogRows(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]StatusLogResponse, 0, len(rows))
	for _, r := range rows {
		loc, err := pointGeoJSON(r.Latitude, r.Longitude)
		if err != nil {
			s.logger.Warn("render log location failed", zap.String("log_id", r.ID.String()), zap.Error(err))
		}
		out = append(out, StatusLogResponse{
			ID:             r.ID.String(),
			Phase:          r.Phase.String(),
			DropID:         idPtr(r.DropID),
			DropName:       r.DropName,
			ActorID:        r.ActorID.String(),
			ActorName:      r.ActorName,
			Remarks:        r.Remarks,
			OccurredAt:     r.OccurredAt.UTC().Format(time.RFC3339),
			ClientActionID: r.ClientActionID,
			Location:       loc,
		})
	}
	return out, nil
}
