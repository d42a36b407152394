package vehicle

import (
	"context"
	"strings"

	"go-fleetpay/internal/shared/scope"

	"gorm.io/gorm"
)

type RepoFilter struct {
	VehicleType string
	Q           string
	Active      *bool
}

//go:generate mockgen -source=vehicle_repo.go -destination=mock/vehicle_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	FindAll(ctx context.Context, f RepoFilter, page, pageSize int) ([]Vehicle, int64, error)
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *repository) FindAll(ctx context.Context, f RepoFilter, page, pageSize int) ([]Vehicle, int64, error) {
	q := r.db.WithContext(ctx).Model(&Vehicle{})
	if f.VehicleType != "" {
		q = q.Where("LOWER(vehicle_type) = ?", strings.ToLower(f.VehicleType))
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		q = q.Where("(LOWER(plate_number) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vehicles []Vehicle
	err := q.Order("plate_number ASC").Scopes(scope.Paginate(page, pageSize)).Find(&vehicles).Error
	return vehicles, total, err
}

func (r *repository) Update(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Vehicle{}, "id = ?", id).Error
}
