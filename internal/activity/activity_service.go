package activity

import (
	"context"
	"encoding/json"
	"time"

	activityerrors "go-fleetpay/internal/activity/errors"
	"go-fleetpay/internal/shared/civil"

	"go.uber.org/zap"
)

//go:generate mockgen -source=activity_service.go -destination=mock/activity_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, f ListFilter) ([]ActivityLogResponse, int64, error)
	Purge(ctx context.Context, before string) (PurgeResponse, error)
}

type service struct {
	repo     Repository
	recorder Recorder
	logger   *zap.Logger
}

func NewService(repo Repository, recorder Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("activity.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity.service")
	}
	if recorder == nil {
		recorder = Nop{}
	}
	return &service{repo: repo, recorder: recorder, logger: l}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]ActivityLogResponse, int64, error) {
	rf := RepoFilter{ActorID: f.ActorID, Action: f.Action, Entity: f.Entity}

	if f.From != "" {
		from, err := civil.Parse(f.From)
		if err != nil {
			return nil, 0, activityerrors.ErrInvalidDate
		}
		rf.From = &from
	}
	if f.To != "" {
		to, err := civil.Parse(f.To)
		if err != nil {
			return nil, 0, activityerrors.ErrInvalidDate
		}
		// inclusive end date
		end := to.AddDate(0, 0, 1)
		rf.To = &end
	}

	rows, total, err := s.repo.List(ctx, rf, f.Page, f.PageSize)
	if err != nil {
		s.logger.Error("list activity failed", zap.Error(err))
		return nil, 0, err
	}

	out := make([]ActivityLogResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapToResponse(row))
	}
	return out, total, nil
}

func (s *service) Purge(ctx context.Context, before string) (PurgeResponse, error) {
	if before == "" {
		return PurgeResponse{}, activityerrors.ErrBeforeRequired
	}
	cutoff, err := civil.Parse(before)
	if err != nil {
		return PurgeResponse{}, activityerrors.ErrInvalidDate
	}

	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("purge activity failed", zap.String("before", before), zap.Error(err))
		return PurgeResponse{}, err
	}

	s.recorder.Record(ctx, Entry{
		Action:  "ACTIVITY_PURGED",
		Entity:  "activity_log",
		Message: "activity logs purged",
		Meta:    map[string]any{"before": before, "deleted": deleted},
	})
	s.logger.Info("activity purged", zap.String("before", before), zap.Int64("deleted", deleted))

	return PurgeResponse{Before: before, Deleted: deleted}, nil
}

func mapToResponse(row LogRow) ActivityLogResponse {
	resp := ActivityLogResponse{
		ID:        row.ID.String(),
		ActorName: row.ActorName,
		Action:    row.Action,
		Entity:    row.Entity,
		EntityID:  row.EntityID,
		Message:   row.Message,
		CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
	}
	if row.ActorID != nil {
		resp.ActorID = row.ActorID.String()
	}
	if row.Meta != "" && json.Valid([]byte(row.Meta)) {
		resp.Meta = json.RawMessage(row.Meta)
	}
	return resp
}
