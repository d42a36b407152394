package activity

import (
	"context"
	"time"

	"go-fleetpay/internal/shared/scope"

	"gorm.io/gorm"
)

type RepoFilter struct {
	ActorID string
	Action  string
	Entity  string
	From    *time.Time
	To      *time.Time
}

type LogRow struct {
	ActivityLog
	ActorName string
}

//go:generate mockgen -source=activity_repo.go -destination=mock/activity_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, entry *ActivityLog) error
	List(ctx context.Context, f RepoFilter, page, pageSize int) ([]LogRow, int64, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, f RepoFilter, page, pageSize int) ([]LogRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&ActivityLog{})
	if f.ActorID != "" {
		q = q.Where("activity_logs.actor_id = ?", f.ActorID)
	}
	if f.Action != "" {
		q = q.Where("activity_logs.action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("activity_logs.entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("activity_logs.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("activity_logs.created_at < ?", *f.To)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []LogRow
	err := q.
		Select("activity_logs.*, users.name AS actor_name").
		Joins("LEFT JOIN users ON users.id = activity_logs.actor_id").
		Order("activity_logs.created_at DESC").
		Scopes(scope.Paginate(page, pageSize)).
		Scan(&rows).Error
	return rows, total, err
}

func (r *repository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&ActivityLog{})
	return res.RowsAffected, res.Error
}
