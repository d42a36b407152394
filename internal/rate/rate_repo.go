package rate

import (
	"context"
	"strings"

	"go-fleetpay/internal/shared/scope"

	"gorm.io/gorm"
)

type RepoFilter struct {
	VehicleType string
	Q           string
}

//go:generate mockgen -source=rate_repo.go -destination=mock/rate_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, r *PayrollRate) error
	FindByID(ctx context.Context, id string) (*PayrollRate, error)
	FindAll(ctx context.Context, f RepoFilter, page, pageSize int) ([]PayrollRate, int64, error)
	FindByVehicleType(ctx context.Context, vehicleType string) ([]PayrollRate, error)
	ExistsPair(ctx context.Context, routeCluster, vehicleType, excludeID string) (bool, error)
	Update(ctx context.Context, r *PayrollRate) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, rt *PayrollRate) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollRate, error) {
	var rt PayrollRate
	err := r.db.WithContext(ctx).First(&rt, "id = ?", id).Error
	return &rt, err
}

func (r *repository) FindAll(ctx context.Context, f RepoFilter, page, pageSize int) ([]PayrollRate, int64, error) {
	q := r.db.WithContext(ctx).Model(&PayrollRate{})
	if f.VehicleType != "" {
		q = q.Where("LOWER(vehicle_type) = ?", strings.ToLower(f.VehicleType))
	}
	if f.Q != "" {
		q = q.Where("LOWER(route_cluster) LIKE ?", "%"+strings.ToLower(f.Q)+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rates []PayrollRate
	err := q.Order("route_cluster ASC").Order("vehicle_type ASC").
		Scopes(scope.Paginate(page, pageSize)).
		Find(&rates).Error
	return rates, total, err
}

func (r *repository) FindByVehicleType(ctx context.Context, vehicleType string) ([]PayrollRate, error) {
	var rates []PayrollRate
	err := r.db.WithContext(ctx).
		Where("LOWER(vehicle_type) = ?", strings.ToLower(strings.TrimSpace(vehicleType))).
		Find(&rates).Error
	return rates, err
}

func (r *repository) ExistsPair(ctx context.Context, routeCluster, vehicleType, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&PayrollRate{}).
		Where("LOWER(route_cluster) = ? AND LOWER(vehicle_type) = ?",
			strings.ToLower(routeCluster), strings.ToLower(vehicleType))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *repository) Update(ctx context.Context, rt *PayrollRate) error {
	return r.db.WithContext(ctx).Save(rt).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&PayrollRate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
