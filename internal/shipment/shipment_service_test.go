package shipment_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/events"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/counter"
	"go-fleetpay/internal/shared/testdb"
	"go-fleetpay/internal/shipment"
	shipmenterrors "go-fleetpay/internal/shipment/errors"
	"go-fleetpay/internal/user"
	"go-fleetpay/internal/vehicle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     shipment.Service
	repo    shipment.Repository
	ops     domain.Viewer
	driver  domain.Viewer
	helper  domain.Viewer
	other   domain.Viewer
	vehicle vehicle.Vehicle
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testdb.Open(t,
		&user.User{}, &vehicle.Vehicle{}, &counter.ReferenceCounter{}, &kafka.OutboxEvent{},
		&shipment.Shipment{}, &shipment.Drop{}, &shipment.StatusLog{},
	)

	mkUser := func(name, role string) domain.Viewer {
		u := user.User{ID: uuid.New(), Name: name, Email: name + "@fleet.test", Password: "x", Role: role, IsActive: true}
		require.NoError(t, db.Create(&u).Error)
		return domain.Viewer{UserID: u.ID.String(), Role: domain.Role(role)}
	}

	f := fixture{db: db}
	f.ops = mkUser("ops", "OPERATIONS")
	f.driver = mkUser("driver", "DRIVER")
	f.helper = mkUser("helper", "HELPER")
	f.other = mkUser("other", "DRIVER")
	f.vehicle = vehicle.Vehicle{ID: uuid.New(), PlateNumber: "B 1 XX", VehicleType: "CDD", IsActive: true}
	require.NoError(t, db.Create(&f.vehicle).Error)

	f.repo = shipment.NewRepository(db)
	f.svc = shipment.NewService(shipment.Deps{
		DB:       db,
		Repo:     f.repo,
		Users:    user.NewRepository(db),
		Vehicles: vehicle.NewRepository(db),
		Counter:  counter.NewRepository(db),
		Outbox:   kafka.NewOutboxRepository(db),
	})
	return f
}

func onDay(y int, m time.Month, d int) context.Context {
	return contextutil.WithNow(context.Background(), time.Date(y, m, d, 9, 0, 0, 0, time.UTC))
}

func strPtr(s string) *string { return &s }

func (f fixture) create(t *testing.T, ctx context.Context, drops ...shipment.DropRequest) shipment.ShipmentResponse {
	t.Helper()
	resp, err := f.svc.Create(ctx, f.ops, shipment.CreateShipmentRequest{
		DestinationName:     "Alfamart Cikarang",
		DestinationLocation: "Cikarang, Bekasi",
		VehicleID:           f.vehicle.ID.String(),
		DriverID:            f.driver.UserID,
		HelperID:            strPtr(f.helper.UserID),
		LoadingDate:         strPtr("2024-05-10"),
		DeliveryDate:        strPtr("2024-05-11"),
		Drops:               drops,
	})
	require.NoError(t, err)
	return resp
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 1)

	first := f.create(t, ctx)
	second := f.create(t, ctx, shipment.DropRequest{Name: "A"}, shipment.DropRequest{Name: "B"})

	assert.Equal(t, "SHP-2024-000001", first.Reference)
	assert.Equal(t, "SHP-2024-000002", second.Reference)
	assert.Equal(t, "Pending", first.CurrentStatus)
	assert.Equal(t, "upcoming", first.Category)
	require.Len(t, first.Drops, 1)
	assert.Equal(t, "Alfamart Cikarang", first.Drops[0].Name)
	require.Len(t, second.Drops, 2)
	assert.Equal(t, 2, second.Drops[1].Sequence)

	t.Run("rejects inverted dates", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.ops, shipment.CreateShipmentRequest{
			DestinationName: "X", VehicleID: f.vehicle.ID.String(), DriverID: f.driver.UserID,
			LoadingDate: strPtr("2024-05-12"), DeliveryDate: strPtr("2024-05-11"),
		})
		assert.ErrorIs(t, err, shipmenterrors.ErrInvalidDateRange)
	})

	t.Run("rejects helper as driver", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.ops, shipment.CreateShipmentRequest{
			DestinationName: "X", VehicleID: f.vehicle.ID.String(), DriverID: f.helper.UserID,
		})
		assert.ErrorIs(t, err, shipmenterrors.ErrDriverInvalid)
	})

	t.Run("rejects unknown vehicle", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.ops, shipment.CreateShipmentRequest{
			DestinationName: "X", VehicleID: uuid.NewString(), DriverID: f.driver.UserID,
		})
		assert.ErrorIs(t, err, shipmenterrors.ErrVehicleUnavailable)
	})
}

func TestService_CrewVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 1)
	s := f.create(t, ctx)

	list, err := f.svc.List(ctx, f.driver, shipment.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.svc.List(ctx, f.other, shipment.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.GetByID(ctx, f.other, s.ID)
	assert.ErrorIs(t, err, shipmenterrors.ErrShipmentNotFound)

	_, err = f.svc.UpdateStatus(onDay(2024, 5, 10), f.other, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival at Warehouse"})
	assert.ErrorIs(t, err, shipmenterrors.ErrNotCrew)

	list, err = f.svc.List(ctx, f.ops, shipment.ListFilter{Category: "upcoming"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.List(ctx, f.ops, shipment.ListFilter{Category: "late"})
	assert.ErrorIs(t, err, shipmenterrors.ErrInvalidCategory)
}

func TestService_UpdateStatus_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, onDay(2024, 5, 1), shipment.DropRequest{Name: "A"}, shipment.DropRequest{Name: "B"})

	t.Run("warehouse step gated by loading date", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(onDay(2024, 5, 9), f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival at Warehouse"})
		assert.ErrorIs(t, err, shipmenterrors.ErrTooEarly)
	})

	t.Run("only the active step is accepted", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(onDay(2024, 5, 10), f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "End Loading"})
		assert.ErrorIs(t, err, shipmenterrors.ErrStepNotActive)
	})

	ctx := onDay(2024, 5, 10)
	for _, p := range phase.WarehousePhases() {
		resp, err := f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{Phase: p.String()})
		require.NoError(t, err, p.String())
		assert.True(t, resp.Applied)
		assert.Equal(t, p.String(), resp.CurrentStatus)
	}

	t.Run("replayed step is idempotent", func(t *testing.T) {
		resp, err := f.svc.UpdateStatus(ctx, f.helper, s.ID, shipment.UpdateStatusRequest{Phase: "Start Loading"})
		require.NoError(t, err)
		assert.False(t, resp.Applied)
		assert.Equal(t, "Start Route", resp.CurrentStatus)
	})

	t.Run("store step gated by delivery date", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival", DropID: strPtr(s.Drops[0].ID)})
		assert.ErrorIs(t, err, shipmenterrors.ErrTooEarly)
	})

	t.Run("store step needs a drop on multi-drop shipments", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(onDay(2024, 5, 11), f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival"})
		assert.ErrorIs(t, err, shipmenterrors.ErrDropRequired)
	})

	t.Run("second drop waits for the first", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(onDay(2024, 5, 11), f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival", DropID: strPtr(s.Drops[1].ID)})
		assert.ErrorIs(t, err, shipmenterrors.ErrStepNotActive)
	})

	ctx = onDay(2024, 5, 11)
	var last shipment.UpdateStatusResponse
	for _, d := range s.Drops {
		for _, p := range phase.StorePhases() {
			resp, err := f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{
				Phase:     p.String(),
				DropID:    strPtr(d.ID),
				Latitude:  floatPtr(-6.3),
				Longitude: floatPtr(107.1),
			})
			require.NoError(t, err, d.Name+" "+p.String())
			require.True(t, resp.Applied)
			last = resp
		}
	}
	assert.True(t, last.Completed)
	assert.Equal(t, "Completed", last.CurrentStatus)
	assert.Nil(t, last.NextStep)

	got, err := f.svc.GetByID(ctx, f.ops, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Category)
	assert.NotNil(t, got.CompletedAt)
	for _, st := range got.Timeline {
		assert.Equal(t, "done", st.State)
	}

	t.Run("replay after completion is still idempotent", func(t *testing.T) {
		resp, err := f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Departure", DropID: strPtr(s.Drops[1].ID)})
		require.NoError(t, err)
		assert.False(t, resp.Applied)
		assert.True(t, resp.Completed)
	})

	t.Run("completed shipment cannot be cancelled", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, f.ops, s.ID)
		assert.ErrorIs(t, err, shipmenterrors.ErrAlreadyCompleted)
	})

	var logCount int64
	require.NoError(t, f.db.Model(&shipment.StatusLog{}).Where("shipment_id = ?", s.ID).Count(&logCount).Error)
	assert.EqualValues(t, 5+12, logCount)

	var completedEvents []kafka.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", events.ShipmentCompleted).Find(&completedEvents).Error)
	require.Len(t, completedEvents, 1)
	assert.Equal(t, events.ShipmentCompletedTopic, completedEvents[0].Topic)
	assert.Contains(t, string(completedEvents[0].Payload), `"delivery_date":"2024-05-11"`)

	logs, err := f.svc.ListLogs(ctx, f.ops, s.ID)
	require.NoError(t, err)
	require.Len(t, logs, 17)
	assert.Equal(t, "driver", logs[0].ActorName)
	assert.Nil(t, logs[0].Location)
	assert.JSONEq(t, `{"type":"Point","coordinates":[107.1,-6.3]}`, string(logs[5].Location))
	assert.Equal(t, "A", logs[5].DropName)
}

func floatPtr(f float64) *float64 { return &f }

func TestService_ArchivedAndCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 10)
	s := f.create(t, ctx)

	_, err := f.svc.SetArchived(ctx, f.ops, s.ID, true)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival at Warehouse"})
	assert.ErrorIs(t, err, shipmenterrors.ErrArchived)

	n, err := f.repo.CountActiveByUser(ctx, f.driver.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.SetArchived(ctx, f.ops, s.ID, false)
	require.NoError(t, err)
	n, err = f.repo.CountActiveByVehicle(ctx, f.vehicle.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	resp, err := f.svc.Cancel(ctx, f.ops, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", resp.CurrentStatus)

	_, err = f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival at Warehouse"})
	assert.ErrorIs(t, err, shipmenterrors.ErrTerminal)

	_, err = f.svc.Update(ctx, f.ops, s.ID, shipment.UpdateShipmentRequest{DestinationName: strPtr("Y")})
	assert.ErrorIs(t, err, shipmenterrors.ErrTerminal)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 10)
	pending := f.create(t, ctx)
	started := f.create(t, ctx)

	_, err := f.svc.UpdateStatus(ctx, f.driver, started.ID, shipment.UpdateStatusRequest{Phase: "Arrival at Warehouse"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.ops, started.ID), shipmenterrors.ErrNotPending)
	require.NoError(t, f.svc.Delete(ctx, f.ops, pending.ID))

	_, err = f.svc.GetByID(ctx, f.ops, pending.ID)
	assert.ErrorIs(t, err, shipmenterrors.ErrShipmentNotFound)

	var drops int64
	require.NoError(t, f.db.Model(&shipment.Drop{}).Where("shipment_id = ?", pending.ID).Count(&drops).Error)
	assert.Zero(t, drops)
}

func TestService_UpdateReplacesDropsWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 10)
	s := f.create(t, ctx)

	resp, err := f.svc.Update(ctx, f.ops, s.ID, shipment.UpdateShipmentRequest{
		Drops: []shipment.DropRequest{{Name: "North"}, {Name: "South"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Drops, 2)
	assert.Equal(t, "South", resp.Drops[1].Name)

	_, err = f.svc.UpdateStatus(ctx, f.driver, s.ID, shipment.UpdateStatusRequest{Phase: "Arrival at Warehouse"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.ops, s.ID, shipment.UpdateShipmentRequest{Drops: []shipment.DropRequest{{Name: "Only"}}})
	assert.ErrorIs(t, err, shipmenterrors.ErrDropsLocked)
}

func TestService_Export(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 1)

	_, err := f.svc.Export(ctx, f.ops, shipment.ListFilter{})
	assert.ErrorIs(t, err, shipmenterrors.ErrNoRows)

	s := f.create(t, ctx)
	body, err := f.svc.Export(ctx, f.ops, shipment.ListFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Shipments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Reference", rows[0][0])
	assert.Equal(t, s.Reference, rows[1][0])
	assert.Equal(t, "B 1 XX", rows[1][3])
	assert.Equal(t, "driver", rows[1][4])
	assert.Equal(t, "helper", rows[1][5])
}

func TestService_GetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 10)
	s := f.create(t, ctx)

	snap, err := f.svc.GetStatus(ctx, f.helper, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", snap.CurrentStatus)

	_, err = f.svc.GetStatus(ctx, f.other, s.ID)
	assert.ErrorIs(t, err, shipmenterrors.ErrShipmentNotFound)

	_, err = f.svc.GetStatus(ctx, f.ops, uuid.NewString())
	assert.ErrorIs(t, err, shipmenterrors.ErrShipmentNotFound)
}

// transitionAfterRead simulates a status transition landing between an
// edit's read of the row and its write.
type transitionAfterRead struct {
	shipment.Repository
	tx *gorm.DB
	to string
}

func (r *transitionAfterRead) WithTx(tx *gorm.DB) shipment.Repository {
	return &transitionAfterRead{Repository: r.Repository.WithTx(tx), tx: tx, to: r.to}
}

func (r *transitionAfterRead) FindByIDForUpdate(ctx context.Context, id string) (*shipment.Shipment, error) {
	sh, err := r.Repository.FindByIDForUpdate(ctx, id)
	if err != nil || r.tx == nil {
		return sh, err
	}
	return sh, r.tx.Exec("UPDATE shipments SET current_status = ? WHERE id = ?", r.to, id).Error
}

func TestService_EditsKeepProgressColumns(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 5, 10)

	racing := shipment.NewService(shipment.Deps{
		DB:       f.db,
		Repo:     &transitionAfterRead{Repository: f.repo, to: "Start Route"},
		Users:    user.NewRepository(f.db),
		Vehicles: vehicle.NewRepository(f.db),
		Counter:  counter.NewRepository(f.db),
		Outbox:   kafka.NewOutboxRepository(f.db),
	})

	t.Run("archive", func(t *testing.T) {
		s := f.create(t, ctx)

		resp, err := racing.SetArchived(ctx, f.ops, s.ID, true)
		require.NoError(t, err)
		assert.True(t, resp.IsArchived)

		var row shipment.Shipment
		require.NoError(t, f.db.First(&row, "id = ?", s.ID).Error)
		assert.Equal(t, phase.StartRoute, row.CurrentStatus)
		assert.True(t, row.IsArchived)
	})

	t.Run("update", func(t *testing.T) {
		s := f.create(t, ctx)

		_, err := racing.Update(ctx, f.ops, s.ID, shipment.UpdateShipmentRequest{
			DestinationName: strPtr("Indomaret Bekasi"),
			ClearHelper:     true,
		})
		require.NoError(t, err)

		var row shipment.Shipment
		require.NoError(t, f.db.First(&row, "id = ?", s.ID).Error)
		assert.Equal(t, phase.StartRoute, row.CurrentStatus)
		assert.Equal(t, "Indomaret Bekasi", row.DestinationName)
		assert.Nil(t, row.HelperID)
	})
}
