package kpi

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=kpi_repo.go -destination=mock/kpi_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ReplaceFile(ctx context.Context, periodID, sourceFile string, entries []Entry) error
	ListByPeriod(ctx context.Context, periodID string) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// ReplaceFile swaps the rows a previous upload of the same file left in the period.
func (r *repository) ReplaceFile(ctx context.Context, periodID, sourceFile string, entries []Entry) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("period_id = ? AND source_file = ?", periodID, sourceFile).Delete(&Entry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return db.CreateInBatches(entries, 200).Error
}

func (r *repository) ListByPeriod(ctx context.Context, periodID string) ([]Entry, error) {
	var out []Entry
	q := r.db.WithContext(ctx)
	if periodID != "" {
		q = q.Where("period_id = ?", periodID)
	}
	err := q.Order("score DESC").Order("employee_name ASC").Find(&out).Error
	return out, err
}
