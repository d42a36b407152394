package payroll

import (
	"context"
	"time"

	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Candidate is a completed shipment as seen by payroll.
type Candidate struct {
	ShipmentID          uuid.UUID  `gorm:"column:shipment_id"`
	Reference           string     `gorm:"column:reference"`
	DestinationLocation string     `gorm:"column:destination_location"`
	DestinationName     string     `gorm:"column:destination_name"`
	VehicleType         string     `gorm:"column:vehicle_type"`
	DriverID            uuid.UUID  `gorm:"column:driver_id"`
	HelperID            *uuid.UUID `gorm:"column:helper_id"`
	DeliveryDate        *time.Time `gorm:"column:delivery_date"`
}

// Destination is the text matched against rate route clusters.
func (c Candidate) Destination() string {
	if c.DestinationLocation != "" {
		return c.DestinationLocation
	}
	return c.DestinationName
}

type LineItemRow struct {
	LineItem
	Reference    string     `gorm:"column:reference"`
	Destination  string     `gorm:"column:destination_name"`
	DeliveryDate *time.Time `gorm:"column:delivery_date"`
	CrewName     string     `gorm:"column:crew_name"`
}

type Person struct {
	ID   uuid.UUID `gorm:"column:id"`
	Name string    `gorm:"column:name"`
	Role string    `gorm:"column:role"`
}

type LineKey struct {
	ShipmentID uuid.UUID
	CrewID     uuid.UUID
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePeriod(ctx context.Context, p *Period) error
	FindPeriod(ctx context.Context, id string) (*Period, error)
	FindPeriodForUpdate(ctx context.Context, id string) (*Period, error)
	ListPeriods(ctx context.Context) ([]Period, error)
	HasOverlap(ctx context.Context, start, end time.Time) (bool, error)
	PreviousPeriod(ctx context.Context, before time.Time) (*Period, error)
	OpenPeriodContaining(ctx context.Context, d time.Time) (*Period, error)
	UpdatePeriod(ctx context.Context, p *Period) error

	ListCandidates(ctx context.Context, start, end time.Time, shipmentID string) ([]Candidate, error)
	FindCandidate(ctx context.Context, shipmentID string) (*Candidate, error)
	ExistingLineKeys(ctx context.Context, shipmentIDs []uuid.UUID) (map[LineKey]bool, error)
	CreateLineItems(ctx context.Context, items []LineItem) error
	ListLineItems(ctx context.Context, periodID, userID string) ([]LineItemRow, error)

	CreateAdjustment(ctx context.Context, a *Adjustment) error
	FindAdjustment(ctx context.Context, id string) (*Adjustment, error)
	ListAdjustments(ctx context.Context, f RecordFilter) ([]Adjustment, error)
	UpdateAdjustment(ctx context.Context, a *Adjustment) error
	DeleteActiveCarryOvers(ctx context.Context, periodID string) error

	CreatePayment(ctx context.Context, p *Payment) error
	FindPayment(ctx context.Context, id string) (*Payment, error)
	ListPayments(ctx context.Context, f RecordFilter) ([]Payment, error)
	UpdatePayment(ctx context.Context, p *Payment) error

	FindPeople(ctx context.Context, ids []uuid.UUID) ([]Person, error)
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

func (r *repository) CreatePeriod(ctx context.Context, p *Period) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindPeriod(ctx context.Context, id string) (*Period, error) {
	var p Period
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindPeriodForUpdate(ctx context.Context, id string) (*Period, error) {
	var p Period
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) ListPeriods(ctx context.Context) ([]Period, error) {
	var periods []Period
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&periods).Error
	return periods, err
}

func (r *repository) HasOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Period{}).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Count(&count).Error
	return count > 0, err
}

// PreviousPeriod returns the closest period ending before the given date.
func (r *repository) PreviousPeriod(ctx context.Context, before time.Time) (*Period, error) {
	var p Period
	err := r.db.WithContext(ctx).
		Where("end_date < ?", before).
		Order("end_date DESC").
		First(&p).Error
	return &p, err
}

func (r *repository) OpenPeriodContaining(ctx context.Context, d time.Time) (*Period, error) {
	var p Period
	err := r.db.WithContext(ctx).
		Where("status = ?", PeriodOpen).
		Where("start_date <= ? AND end_date >= ?", d, d).
		First(&p).Error
	return &p, err
}

func (r *repository) UpdatePeriod(ctx context.Context, p *Period) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ListCandidates returns completed shipments delivered within [start, end].
// A non-empty shipmentID narrows the result to that shipment.
func (r *repository) ListCandidates(ctx context.Context, start, end time.Time, shipmentID string) ([]Candidate, error) {
	q := r.candidateQuery(ctx).
		Where("s.delivery_date >= ? AND s.delivery_date <= ?", start, end)
	if shipmentID != "" {
		q = q.Where("s.id = ?", shipmentID)
	}

	var out []Candidate
	err := q.Order("s.delivery_date ASC").Order("s.reference ASC").Scan(&out).Error
	return out, err
}

func (r *repository) candidateQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("shipments AS s").
		Select(`s.id AS shipment_id, s.reference, s.destination_location, s.destination_name,
			v.vehicle_type, s.driver_id, s.helper_id, s.delivery_date`).
		Joins("LEFT JOIN vehicles v ON v.id = s.vehicle_id").
		Where("s.current_status = ?", phase.Completed.String())
}

// FindCandidate returns gorm.ErrRecordNotFound unless the shipment is completed.
func (r *repository) FindCandidate(ctx context.Context, shipmentID string) (*Candidate, error) {
	var out []Candidate
	if err := r.candidateQuery(ctx).Where("s.id = ?", shipmentID).Limit(1).Scan(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out[0], nil
}

func (r *repository) ExistingLineKeys(ctx context.Context, shipmentIDs []uuid.UUID) (map[LineKey]bool, error) {
	keys := make(map[LineKey]bool)
	if len(shipmentIDs) == 0 {
		return keys, nil
	}
	var rows []LineItem
	err := r.db.WithContext(ctx).
		Select("shipment_id", "crew_id").
		Where("shipment_id IN ?", shipmentIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		keys[LineKey{row.ShipmentID, row.CrewID}] = true
	}
	return keys, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

func (r *repository) ListLineItems(ctx context.Context, periodID, userID string) ([]LineItemRow, error) {
	q := r.db.WithContext(ctx).
		Table("shipment_payrolls AS sp").
		Select(`sp.*, s.reference, s.destination_name, s.delivery_date, u.name AS crew_name`).
		Joins("LEFT JOIN shipments s ON s.id = sp.shipment_id").
		Joins("LEFT JOIN users u ON u.id = sp.crew_id").
		Where("sp.period_id = ?", periodID)
	if userID != "" {
		q = q.Where("sp.crew_id = ?", userID)
	}

	var out []LineItemRow
	err := q.Order("s.delivery_date ASC").Order("s.reference ASC").Order("sp.crew_role ASC").Scan(&out).Error
	return out, err
}

func (r *repository) CreateAdjustment(ctx context.Context, a *Adjustment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindAdjustment(ctx context.Context, id string) (*Adjustment, error) {
	var a Adjustment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func recordScope(f RecordFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.PeriodID != "" {
			db = db.Scopes(scope.Period(f.PeriodID))
		}
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		return db
	}
}

func (r *repository) ListAdjustments(ctx context.Context, f RecordFilter) ([]Adjustment, error) {
	var out []Adjustment
	err := r.db.WithContext(ctx).
		Scopes(recordScope(f)).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) UpdateAdjustment(ctx context.Context, a *Adjustment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) DeleteActiveCarryOvers(ctx context.Context, periodID string) error {
	return r.db.WithContext(ctx).
		Scopes(scope.Period(periodID), scope.NotVoid).
		Where("source = ?", SourceCarryOver).
		Delete(&Adjustment{}).Error
}

func (r *repository) CreatePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindPayment(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) ListPayments(ctx context.Context, f RecordFilter) ([]Payment, error) {
	var out []Payment
	err := r.db.WithContext(ctx).
		Scopes(recordScope(f)).
		Order("paid_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) UpdatePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) FindPeople(ctx context.Context, ids []uuid.UUID) ([]Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []Person
	err := r.db.WithContext(ctx).
		Table("users").
		Select("id, name, role").
		Where("id IN ?", ids).
		Scan(&out).Error
	return out, err
}
