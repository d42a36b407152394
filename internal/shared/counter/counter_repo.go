package counter

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ReferenceCounter keeps the last issued number per counter type and scope
// (for example shipments per year).
type ReferenceCounter struct {
	CounterType string `gorm:"primaryKey;size:32"`
	Scope       string `gorm:"primaryKey;size:16"`
	LastValue   int64  `gorm:"not null"`
	UpdatedAt   time.Time
}

//go:generate mockgen -source=counter_repo.go -destination=mock/counter_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetNextValue(ctx context.Context, counterType, scope string) (int64, error)
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

func (r *repository) GetNextValue(ctx context.Context, counterType, scope string) (int64, error) {
	var nextValue int64

	// single statement upsert so concurrent callers never share a value
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO reference_counters (counter_type, scope, last_value, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (counter_type, scope) DO UPDATE
		SET last_value = reference_counters.last_value + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING last_value
	`, counterType, scope).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
