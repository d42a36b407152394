package activity

import (
	"context"
	"encoding/json"
	"time"

	"go-fleetpay/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry describes one auditable action.
type Entry struct {
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Message  string
	Meta     map[string]any
}

//go:generate mockgen -source=activity_recorder.go -destination=mock/activity_recorder_mock.go -package=mock
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	repo   Repository
	logger *zap.Logger
}

// NewRecorder writes entries to the structured log and to activity_logs.
// A nil repo keeps the log line only.
func NewRecorder(repo Repository, logger ...*zap.Logger) Recorder {
	l := zap.L().Named("activity")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity")
	}
	return &recorder{repo: repo, logger: l}
}

func (r *recorder) Record(ctx context.Context, e Entry) {
	if e.ActorID == "" {
		e.ActorID = contextutil.GetUserID(ctx)
	}

	r.logger.Info("activity",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("actor_id", e.ActorID),
		zap.String("action", e.Action),
		zap.String("entity", e.Entity),
		zap.String("entity_id", e.EntityID),
		zap.String("message", e.Message),
		zap.Any("meta", e.Meta),
	)

	if r.repo == nil {
		return
	}

	row := &ActivityLog{
		ID:        uuid.New(),
		Action:    e.Action,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Message:   e.Message,
		CreatedAt: time.Now().UTC(),
	}
	if id, err := uuid.Parse(e.ActorID); err == nil {
		row.ActorID = &id
	}
	if len(e.Meta) > 0 {
		if b, err := json.Marshal(e.Meta); err == nil {
			row.Meta = string(b)
		}
	}

	// audit writes must not fail the caller's operation
	if err := r.repo.Create(ctx, row); err != nil {
		r.logger.Warn("persist activity failed", zap.String("action", e.Action), zap.Error(err))
	}
}

// Nop discards entries. Services use it when no recorder is wired.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
