package shipment

import (
	"context"
	"strings"
	"time"

	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/shared/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepoFilter struct {
	DriverID string
	CrewID   string
	Archived *bool
	Q        string
	From     *time.Time
	To       *time.Time
}

// LogRow is a status log joined with its actor and drop names.
type LogRow struct {
	StatusLog
	ActorName string
	DropName  string
}

//go:generate mockgen -source=shipment_repo.go -destination=mock/shipment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, s *Shipment) error
	FindByID(ctx context.Context, id string) (*Shipment, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Shipment, error)
	FindAll(ctx context.Context, f RepoFilter) ([]Shipment, error)
	Update(ctx context.Context, s *Shipment) error
	UpdateDetails(ctx context.Context, s *Shipment) error
	SetArchived(ctx context.Context, id string, archived bool) error
	ReplaceDrops(ctx context.Context, s *Shipment, drops []Drop) error
	Delete(ctx context.Context, id string) error
	AppendLog(ctx context.Context, log *StatusLog) error
	ListLogs(ctx context.Context, shipmentID string) ([]StatusLog, error)
	ListLogRows(ctx context.Context, shipmentID string) ([]LogRow, error)
	CountLogs(ctx context.Context, shipmentID string) (int64, error)
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
	CountActiveByVehicle(ctx context.Context, vehicleID string) (int64, error)
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

func orderedDrops(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

func (r *repository) Create(ctx context.Context, s *Shipment) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Shipment, error) {
	var s Shipment
	err := r.db.WithContext(ctx).
		Preload("Drops", orderedDrops).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Shipment, error) {
	var s Shipment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Drops", orderedDrops).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindAll(ctx context.Context, f RepoFilter) ([]Shipment, error) {
	q := r.db.WithContext(ctx).Model(&Shipment{}).Preload("Drops", orderedDrops)
	if f.DriverID != "" {
		q = q.Where("driver_id = ?", f.DriverID)
	}
	if f.CrewID != "" {
		q = q.Scopes(scope.Crew(f.CrewID))
	}
	if f.Archived != nil {
		q = q.Scopes(scope.Archived(*f.Archived))
	}
	if f.From != nil {
		q = q.Where("delivery_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("delivery_date <= ?", *f.To)
	}
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		q = q.Where("(LOWER(reference) LIKE ? OR LOWER(destination_name) LIKE ? OR LOWER(destination_location) LIKE ?)", like, like, like)
	}

	var out []Shipment
	err := q.Order("loading_date ASC").Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *repository) Update(ctx context.Context, s *Shipment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

// detailColumns are the columns an edit may touch. Progress columns belong
// to status transitions and are never written here.
var detailColumns = []string{
	"destination_name", "destination_location", "vehicle_id", "driver_id",
	"helper_id", "loading_date", "delivery_date", "updated_at",
}

func (r *repository) UpdateDetails(ctx context.Context, s *Shipment) error {
	return r.db.WithContext(ctx).
		Model(s).
		Omit(clause.Associations).
		Select(detailColumns).
		Updates(s).Error
}

func (r *repository) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).
		Model(&Shipment{}).
		Where("id = ?", id).
		Update("is_archived", archived)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ReplaceDrops(ctx context.Context, s *Shipment, drops []Drop) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("shipment_id = ?", s.ID).Delete(&Drop{}).Error; err != nil {
		return err
	}
	if err := db.Create(&drops).Error; err != nil {
		return err
	}
	s.Drops = drops
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("shipment_id = ?", id).Delete(&Drop{}).Error; err != nil {
		return err
	}
	res := db.Delete(&Shipment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AppendLog(ctx context.Context, log *StatusLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) ListLogs(ctx context.Context, shipmentID string) ([]StatusLog, error) {
	var logs []StatusLog
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("occurred_at ASC").Order("created_at ASC").Order("id ASC").
		Find(&logs).Error
	return logs, err
}

func (r *repository) ListLogRows(ctx context.Context, shipmentID string) ([]LogRow, error) {
	var rows []LogRow
	err := r.db.WithContext(ctx).
		Model(&StatusLog{}).
		Select("shipment_status_logs.*, users.name AS actor_name, shipment_drops.name AS drop_name").
		Joins("LEFT JOIN users ON users.id = shipment_status_logs.actor_id").
		Joins("LEFT JOIN shipment_drops ON shipment_drops.id = shipment_status_logs.drop_id").
		Where("shipment_status_logs.shipment_id = ?", shipmentID).
		Order("shipment_status_logs.occurred_at ASC").
		Order("shipment_status_logs.created_at ASC").
		Order("shipment_status_logs.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountLogs(ctx context.Context, shipmentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&StatusLog{}).Where("shipment_id = ?", shipmentID).Count(&n).Error
	return n, err
}

func (r *repository) activeScope(db *gorm.DB) *gorm.DB {
	return db.Model(&Shipment{}).
		Scopes(scope.Archived(false)).
		Where("current_status NOT IN ?", []string{phase.Completed.String(), phase.Cancelled.String()})
}

func (r *repository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.activeScope(r.db.WithContext(ctx)).Scopes(scope.Crew(userID)).Count(&n).Error
	return n, err
}

func (r *repository) CountActiveByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	var n int64
	err := r.activeScope(r.db.WithContext(ctx)).Where("vehicle_id = ?", vehicleID).Count(&n).Error
	return n, err
}
