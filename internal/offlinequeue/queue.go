package offlinequeue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-fleetpay/internal/phase"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	ErrShipmentRequired = errors.New("shipment id is required")
	ErrTerminalPhase    = errors.New("terminal phases cannot be queued")
)

// EnqueueInput describes a phase update captured on the device.
type EnqueueInput struct {
	ShipmentID string
	DropID     *string
	DropSeq    int
	Phase      string
	Remarks    *string
	Latitude   *float64
	Longitude  *float64
}

// ProcessReport summarises one replay pass.
type ProcessReport struct {
	Sent     int      `json:"sent"`
	Dropped  int      `json:"dropped"`
	Retained int      `json:"retained"`
	Errors   []string `json:"errors,omitempty"`
}

type Queue struct {
	db     *gorm.DB
	client Client
	now    func() time.Time
	logger *zap.Logger
}

// Open opens (creating if needed) the SQLite store at path.
func Open(path string, client Client, log ...*zap.Logger) (*Queue, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return New(db, client, log...)
}

func New(db *gorm.DB, client Client, log ...*zap.Logger) (*Queue, error) {
	l := zap.L().Named("offlinequeue")
	if len(log) > 0 && log[0] != nil {
		l = log[0].Named("offlinequeue")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate queue store: %w", err)
	}
	return &Queue{db: db, client: client, now: time.Now, logger: l}, nil
}

func (q *Queue) Close() error {
	sqlDB, err := q.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Enqueue stores the action and advances the local projection.
func (q *Queue) Enqueue(ctx context.Context, in EnqueueInput) (Action, error) {
	in.ShipmentID = strings.TrimSpace(in.ShipmentID)
	if in.ShipmentID == "" {
		return Action{}, ErrShipmentRequired
	}
	p, err := phase.Parse(in.Phase)
	if err != nil {
		return Action{}, err
	}
	if !p.IsStep() {
		return Action{}, ErrTerminalPhase
	}
	if p.Track() == phase.TrackStore && in.DropSeq < 1 {
		in.DropSeq = 1
	}
	if p.Track() == phase.TrackWarehouse {
		in.DropSeq = 0
		in.DropID = nil
	}

	action := Action{
		ClientActionID: uuid.NewString(),
		ShipmentID:     in.ShipmentID,
		DropID:         in.DropID,
		DropSeq:        in.DropSeq,
		Phase:          p,
		Remarks:        in.Remarks,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		QueuedAt:       q.now().UTC(),
		Status:         ActionPending,
	}

	err = q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&action).Error; err != nil {
			return err
		}
		_, err := rebuild(tx, in.ShipmentID, nil)
		return err
	})
	if err != nil {
		return Action{}, err
	}

	q.logger.Debug("action queued",
		zap.String("shipment_id", action.ShipmentID),
		zap.String("phase", p.String()),
		zap.String("client_action_id", action.ClientActionID),
	)
	return action, nil
}

// Pending returns queued actions in replay order.
func (q *Queue) Pending(ctx context.Context) ([]Action, error) {
	var out []Action
	err := q.db.WithContext(ctx).
		Where("status = ?", ActionPending).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

func (q *Queue) Dropped(ctx context.Context) ([]Action, error) {
	var out []Action
	err := q.db.WithContext(ctx).
		Where("status = ?", ActionDropped).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// Process replays pending actions oldest first. A 2xx removes the action, a
// 4xx drops it, anything else stops the pass so later actions keep order.
func (q *Queue) Process(ctx context.Context) (ProcessReport, error) {
	var report ProcessReport

	pending, err := q.Pending(ctx)
	if err != nil {
		return report, err
	}

	for i, a := range pending {
		if err := ctx.Err(); err != nil {
			report.Retained += len(pending) - i
			return report, err
		}

		occurred := a.QueuedAt
		_, sendErr := q.client.UpdateStatus(ctx, a.ShipmentID, StatusUpdate{
			Phase:          a.Phase.String(),
			DropID:         a.DropID,
			Remarks:        a.Remarks,
			Latitude:       a.Latitude,
			Longitude:      a.Longitude,
			OccurredAt:     &occurred,
			ClientActionID: a.ClientActionID,
		})

		log := q.logger.With(
			zap.String("shipment_id", a.ShipmentID),
			zap.String("phase", a.Phase.String()),
			zap.String("client_action_id", a.ClientActionID),
		)

		switch {
		case sendErr == nil:
			delivered := phase.Position{Phase: a.Phase, DropSeq: a.DropSeq}
			err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&Action{}, a.Seq).Error; err != nil {
					return err
				}
				_, err := rebuild(tx, a.ShipmentID, func(p *Projection) {
					p.setServer(phase.Reconcile(delivered, p.Server()))
				})
				return err
			})
			if err != nil {
				return report, err
			}
			report.Sent++
			log.Info("queued action delivered")

		case IsPermanent(sendErr):
			reason := sendErr.Error()
			err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				err := tx.Model(&Action{}).
					Where("seq = ?", a.Seq).
					Updates(map[string]any{
						"status":     ActionDropped,
						"attempts":   gorm.Expr("attempts + 1"),
						"last_error": reason,
					}).Error
				if err != nil {
					return err
				}
				// the rejected phase leaves the fold
				_, err = rebuild(tx, a.ShipmentID, nil)
				return err
			})
			if err != nil {
				return report, err
			}
			report.Dropped++
			report.Errors = append(report.Errors, reason)
			log.Warn("queued action rejected, dropped", zap.String("reason", reason))

		default:
			reason := sendErr.Error()
			err := q.db.WithContext(ctx).Model(&Action{}).
				Where("seq = ?", a.Seq).
				Updates(map[string]any{
					"attempts":   gorm.Expr("attempts + 1"),
					"last_error": reason,
				}).Error
			if err != nil {
				log.Warn("record retry attempt failed", zap.Error(err))
			}
			report.Retained = len(pending) - i
			report.Errors = append(report.Errors, reason)
			log.Warn("queued action retained for retry", zap.Error(sendErr))
			return report, nil
		}
	}
	return report, nil
}

// Reconcile merges a server read into the local projection.
func (q *Queue) Reconcile(ctx context.Context, shipmentID string, server phase.Position) (phase.Position, error) {
	synced := q.now().UTC()
	var out phase.Position
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = rebuild(tx, shipmentID, func(p *Projection) {
			p.setServer(server)
			p.SyncedAt = &synced
		})
		return err
	})
	return out, err
}

// Sync fetches the server status of a shipment and reconciles it.
func (q *Queue) Sync(ctx context.Context, shipmentID string) (phase.Position, error) {
	snap, err := q.client.GetStatus(ctx, shipmentID)
	if err != nil {
		return phase.Position{}, err
	}
	p, err := phase.Parse(snap.CurrentStatus)
	if err != nil {
		return phase.Position{}, err
	}
	return q.Reconcile(ctx, shipmentID, phase.Position{Phase: p, DropSeq: snap.DropSeq})
}

func (q *Queue) Projection(ctx context.Context, shipmentID string) (*Projection, error) {
	var p Projection
	err := q.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queue) Acknowledge(ctx context.Context, shipmentID string) error {
	ack := Acknowledgement{ShipmentID: shipmentID, AcknowledgedAt: q.now().UTC()}
	return q.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ack).Error
}

func (q *Queue) IsAcknowledged(ctx context.Context, shipmentID string) (bool, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&Acknowledgement{}).
		Where("shipment_id = ?", shipmentID).
		Count(&n).Error
	return n > 0, err
}

// rebuild recomputes the shipment's projection as its last server position
// with the still pending actions folded on top in queue order. update, when
// set, edits the stored row (typically the server position) first.
func rebuild(tx *gorm.DB, shipmentID string, update func(*Projection)) (phase.Position, error) {
	var cur Projection
	err := tx.Where("shipment_id = ?", shipmentID).Take(&cur).Error
	exists := err == nil
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		cur = Projection{ShipmentID: shipmentID, ServerPhase: phase.Pending}
	case err != nil:
		return phase.Position{}, err
	}
	if update != nil {
		update(&cur)
	}

	var pending []Action
	err = tx.Where("shipment_id = ? AND status = ?", shipmentID, ActionPending).
		Order("seq ASC").
		Find(&pending).Error
	if err != nil {
		return phase.Position{}, err
	}

	pos := cur.Server()
	for _, a := range pending {
		pos = phase.Reconcile(phase.Position{Phase: a.Phase, DropSeq: a.DropSeq}, pos)
	}
	cur.Phase = pos.Phase
	cur.DropSeq = pos.DropSeq
	cur.Optimistic = phase.Compare(pos, cur.Server()) != 0

	if exists {
		return pos, tx.Save(&cur).Error
	}
	return pos, tx.Create(&cur).Error
}
