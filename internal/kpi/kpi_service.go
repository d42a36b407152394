package kpi

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
	kpierrors "go-fleetpay/internal/kpi/errors"
	"go-fleetpay/internal/payroll"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/database"
	"go-fleetpay/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PeriodFinder resolves the payroll period a report belongs to.
type PeriodFinder interface {
	FindPeriod(ctx context.Context, id string) (*payroll.Period, error)
}

//go:generate mockgen -source=kpi_service.go -destination=mock/kpi_service_mock.go -package=mock
type Service interface {
	Upload(ctx context.Context, viewer domain.Viewer, periodID, filename string, r io.Reader) (UploadResult, error)
	List(ctx context.Context, f ListFilter) ([]EntryResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	periods  PeriodFinder
	users    user.Repository
	recorder activity.Recorder
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, periods PeriodFinder, users user.Repository, recorder activity.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("kpi.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kpi.service")
	}
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{db: db, repo: repo, periods: periods, users: users, recorder: recorder, logger: l}
}

func (s *service) Upload(ctx context.Context, viewer domain.Viewer, periodID, filename string, r io.Reader) (UploadResult, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("period_id", periodID), zap.String("file", filename))

	pid, err := uuid.Parse(periodID)
	if err != nil {
		return UploadResult{}, kpierrors.ErrInvalidPeriodID
	}
	filename = filepath.Base(strings.TrimSpace(filename))
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return UploadResult{}, kpierrors.ErrNotXLSX
	}
	if _, err := s.periods.FindPeriod(ctx, periodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UploadResult{}, kpierrors.ErrPeriodNotFound
		}
		return UploadResult{}, err
	}

	rows, err := Parse(r)
	if err != nil {
		l.Warn("kpi workbook rejected", zap.Error(err))
		return UploadResult{}, err
	}

	users, err := s.users.FindAll(ctx, user.RepoFilter{})
	if err != nil {
		return UploadResult{}, err
	}
	byName := make(map[string]uuid.UUID, len(users))
	for _, u := range users {
		byName[normalizeName(u.Name)] = u.ID
	}

	var uploader *uuid.UUID
	if id, err := uuid.Parse(viewer.UserID); err == nil {
		uploader = &id
	}

	result := UploadResult{PeriodID: periodID, SourceFile: filename, Unmatched: []string{}}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e := Entry{
			ID:           uuid.New(),
			PeriodID:     pid,
			EmployeeName: row.Name,
			Trips:        row.Trips,
			OnTimeRate:   row.OnTimeRate,
			Score:        row.Score,
			SourceFile:   filename,
			UploadedBy:   uploader,
		}
		if id, ok := byName[normalizeName(row.Name)]; ok {
			uid := id
			e.UserID = &uid
			result.Matched++
		} else {
			result.Unmatched = append(result.Unmatched, row.Name)
		}
		entries = append(entries, e)
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceFile(ctx, periodID, filename, entries)
	})
	if err != nil {
		return UploadResult{}, err
	}
	result.Imported = len(entries)

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  viewer.UserID,
		Action:   "KPI_UPLOADED",
		Entity:   "kpi_report",
		EntityID: periodID,
		Message:  "kpi report " + filename + " uploaded",
		Meta:     map[string]any{"imported": result.Imported, "matched": result.Matched},
	})
	l.Info("kpi report imported", zap.Int("imported", result.Imported), zap.Int("unmatched", len(result.Unmatched)))
	return result, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]EntryResponse, error) {
	entries, err := s.repo.ListByPeriod(ctx, f.PeriodID)
	if err != nil {
		return nil, err
	}
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = mapToResponse(e)
	}
	return out, nil
}

func normalizeName(n string) string {
	return strings.ToLower(strings.Join(strings.Fields(n), " "))
}

func mapToResponse(e Entry) EntryResponse {
	resp := EntryResponse{
		ID:           e.ID.String(),
		PeriodID:     e.PeriodID.String(),
		EmployeeName: e.EmployeeName,
		Trips:        e.Trips,
		OnTimeRate:   e.OnTimeRate,
		Score:        e.Score,
		SourceFile:   e.SourceFile,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.UserID != nil {
		id := e.UserID.String()
		resp.UserID = &id
	}
	return resp
}
