package payroll_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/events"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/payroll"
	payrollerrors "go-fleetpay/internal/payroll/errors"
	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/rate"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/testdb"
	"go-fleetpay/internal/shipment"
	"go-fleetpay/internal/user"
	"go-fleetpay/internal/vehicle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     payroll.Service
	finance domain.Viewer
	driver  domain.Viewer
	helper  domain.Viewer
	cdd     vehicle.Vehicle
	seq     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t,
		&user.User{}, &vehicle.Vehicle{}, &shipment.Shipment{}, &rate.PayrollRate{},
		&payroll.Period{}, &payroll.LineItem{}, &payroll.Adjustment{}, &payroll.Payment{},
		&kafka.OutboxEvent{},
	)

	mkUser := func(name, role string) domain.Viewer {
		u := user.User{ID: uuid.New(), Name: name, Email: name + "@fleet.test", Password: "x", Role: role, IsActive: true}
		require.NoError(t, db.Create(&u).Error)
		return domain.Viewer{UserID: u.ID.String(), Role: domain.Role(role)}
	}

	f := &fixture{db: db}
	f.finance = mkUser("finance", "FINANCE")
	f.driver = mkUser("budi", "DRIVER")
	f.helper = mkUser("andi", "HELPER")
	f.cdd = vehicle.Vehicle{ID: uuid.New(), PlateNumber: "B 9 CDD", VehicleType: "CDD", IsActive: true}
	require.NoError(t, db.Create(&f.cdd).Error)

	f.svc = payroll.NewService(payroll.Deps{
		DB:     db,
		Repo:   payroll.NewRepository(db),
		Rates:  rate.NewRepository(db),
		Outbox: kafka.NewOutboxRepository(db),
		Defaults: payroll.Defaults{
			DriverFee: decimal.NewFromInt(600),
			HelperFee: decimal.NewFromInt(400),
		},
	})
	return f
}

func onDay(y int, m time.Month, d int) context.Context {
	return contextutil.WithNow(context.Background(), time.Date(y, m, d, 9, 0, 0, 0, time.UTC))
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func (f *fixture) shipment(t *testing.T, location string, delivered *time.Time, status phase.Phase, withHelper bool) shipment.Shipment {
	t.Helper()
	f.seq++
	s := shipment.Shipment{
		ID:                  uuid.New(),
		Reference:           "SHP-TEST-" + string(rune('A'+f.seq)),
		DestinationName:     "Store " + location,
		DestinationLocation: location,
		VehicleID:           f.cdd.ID,
		DriverID:            uuid.MustParse(f.driver.UserID),
		DeliveryDate:        delivered,
		CurrentStatus:       status,
	}
	if withHelper {
		h := uuid.MustParse(f.helper.UserID)
		s.HelperID = &h
	}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

func (f *fixture) period(t *testing.T, ctx context.Context, name, start, end string) payroll.PeriodResponse {
	t.Helper()
	p, err := f.svc.CreatePeriod(ctx, f.finance, payroll.CreatePeriodRequest{Name: name, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return p
}

func (f *fixture) summaryFor(t *testing.T, ctx context.Context, periodID, userID string) payroll.SummaryRow {
	t.Helper()
	rows, err := f.svc.Summary(ctx, periodID)
	require.NoError(t, err)
	for _, r := range rows {
		if r.UserID == userID {
			return r
		}
	}
	t.Fatalf("no summary row for %s", userID)
	return payroll.SummaryRow{}
}

func TestPeriods(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 1, 1)

	p := f.period(t, ctx, "2024-01", "2024-01-01", "2024-01-31")
	assert.Equal(t, payroll.PeriodOpen, p.Status)

	_, err := f.svc.CreatePeriod(ctx, f.finance, payroll.CreatePeriodRequest{Name: "overlap", StartDate: "2024-01-31", EndDate: "2024-02-15"})
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodOverlap)

	_, err = f.svc.CreatePeriod(ctx, f.finance, payroll.CreatePeriodRequest{Name: "inverted", StartDate: "2024-03-10", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidDateRange)

	_, err = f.svc.CreatePeriod(ctx, f.finance, payroll.CreatePeriodRequest{Name: "2024-01", StartDate: "2024-04-01", EndDate: "2024-04-30"})
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodNameTaken)

	list, err := f.svc.ListPeriods(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.GetPeriod(ctx, uuid.NewString())
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodNotFound)
}

func TestGenerate_LineItemsAndIdempotence(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 2, 1)

	rateRepo := rate.NewRepository(f.db)
	jakarta := rate.PayrollRate{
		ID: uuid.New(), RouteCluster: "Jakarta", VehicleType: "CDD",
		DriverBaseFee: decimal.NewFromInt(700), HelperBaseFee: decimal.NewFromInt(450), FoodAllowance: decimal.NewFromInt(80),
	}
	selatan := rate.PayrollRate{
		ID: uuid.New(), RouteCluster: "Jakarta Selatan", VehicleType: "cdd",
		DriverBaseFee: decimal.NewFromInt(750), HelperBaseFee: decimal.NewFromInt(500), FoodAllowance: decimal.RequireFromString("100.01"),
	}
	require.NoError(t, rateRepo.Create(ctx, &jakarta))
	require.NoError(t, rateRepo.Create(ctx, &selatan))

	p := f.period(t, ctx, "2024-01", "2024-01-01", "2024-01-31")

	matched := f.shipment(t, "Cilandak, Jakarta Selatan", day(2024, 1, 12), phase.Completed, true)
	f.shipment(t, "Surabaya", day(2024, 1, 20), phase.Completed, false)
	f.shipment(t, "Jakarta Barat", day(2024, 1, 22), phase.StartLoading, true)
	f.shipment(t, "Jakarta Barat", day(2024, 2, 2), phase.Completed, true)

	res, err := f.svc.Generate(ctx, f.finance, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.RowsCreated)
	assert.Equal(t, 2, res.ShipmentsProcessed)
	assert.Equal(t, 0, res.CarryOversCreated)

	again, err := f.svc.Generate(ctx, f.finance, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.RowsCreated)
	assert.Equal(t, 0, again.ShipmentsProcessed)

	ledger, err := f.svc.Ledger(ctx, f.finance, p.ID, f.helper.UserID)
	require.NoError(t, err)
	require.Len(t, ledger.LineItems, 1)
	assert.Equal(t, matched.ID.String(), ledger.LineItems[0].ShipmentID)
	assert.Equal(t, "500.00", ledger.LineItems[0].BaseFee.StringFixed(2))
	assert.Equal(t, "50.00", ledger.LineItems[0].Allowance.StringFixed(2))
	require.NotNil(t, ledger.LineItems[0].RateID)
	assert.Equal(t, selatan.ID.String(), *ledger.LineItems[0].RateID)

	driver, err := f.svc.Ledger(ctx, f.finance, p.ID, f.driver.UserID)
	require.NoError(t, err)
	require.Len(t, driver.LineItems, 2)
	sum := decimal.Zero
	for _, li := range driver.LineItems {
		sum = sum.Add(li.BaseFee)
	}
	assert.Equal(t, "1350.00", sum.StringFixed(2))
	assert.Equal(t, "50.01", driver.LineItems[0].Allowance.StringFixed(2))
	assert.Nil(t, driver.LineItems[1].RateID)

	row := f.summaryFor(t, ctx, p.ID, f.driver.UserID)
	assert.True(t, row.TotalBasePay.Equal(sum))
	assert.Equal(t, "budi", row.Name)
	assert.Equal(t, payroll.BadgePayable, row.Status)
}

func TestGenerate_CarryOver(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 2, 1)

	p1 := f.period(t, ctx, "P1", "2024-01-01", "2024-01-31")
	p2 := f.period(t, ctx, "P2", "2024-02-01", "2024-02-29")

	_, err := f.svc.CreateAdjustment(ctx, f.finance, payroll.CreateAdjustmentRequest{
		UserID: f.driver.UserID, PeriodID: p1.ID, Type: "bonus", Amount: decimal.NewFromInt(4000), Reason: "route bonus",
	})
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, f.finance, payroll.CreatePaymentRequest{
		UserID: f.driver.UserID, PeriodID: p1.ID, Amount: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)

	row := f.summaryFor(t, ctx, p1.ID, f.driver.UserID)
	assert.Equal(t, payroll.BadgeBalDue, row.Status)

	_, err = f.svc.Close(ctx, f.finance, p1.ID)
	require.NoError(t, err)

	var closed []kafka.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", events.PayrollPeriodClosed).Find(&closed).Error)
	assert.Len(t, closed, 1)

	res, err := f.svc.Generate(ctx, f.finance, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CarryOversCreated)
	assert.Equal(t, "1000.00", res.CarryOverTotal.StringFixed(2))

	res, err = f.svc.Generate(ctx, f.finance, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CarryOversCreated)

	adjs, err := f.svc.ListAdjustments(ctx, payroll.RecordFilter{PeriodID: p2.ID})
	require.NoError(t, err)
	require.Len(t, adjs, 1)
	assert.Equal(t, payroll.AdjustmentDeduction, adjs[0].Type)
	assert.Equal(t, payroll.SourceCarryOver, adjs[0].Source)
	assert.Equal(t, "Balance from Period #P1", adjs[0].Reason)
	assert.Equal(t, "1000.00", adjs[0].Amount.StringFixed(2))
	require.NotNil(t, adjs[0].SourcePeriodID)
	assert.Equal(t, p1.ID, *adjs[0].SourcePeriodID)

	row = f.summaryFor(t, ctx, p2.ID, f.driver.UserID)
	assert.Equal(t, "-1000.00", row.NetSalary.StringFixed(2))
	assert.Equal(t, payroll.BadgeDeficit, row.Status)

	t.Run("closed period rejects writes", func(t *testing.T) {
		_, err := f.svc.Generate(ctx, f.finance, p1.ID)
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodClosed)

		_, err = f.svc.CreatePayment(ctx, f.finance, payroll.CreatePaymentRequest{
			UserID: f.driver.UserID, PeriodID: p1.ID, Amount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodClosed)

		_, err = f.svc.Close(ctx, f.finance, p1.ID)
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodClosed)
	})
}

func TestAdjustments_Void(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 1, 15)
	p := f.period(t, ctx, "2024-01", "2024-01-01", "2024-01-31")

	bonus, err := f.svc.CreateAdjustment(ctx, f.finance, payroll.CreateAdjustmentRequest{
		UserID: f.helper.UserID, PeriodID: p.ID, Type: "BONUS", Amount: decimal.NewFromInt(250), Reason: "overtime",
	})
	require.NoError(t, err)
	pay, err := f.svc.CreatePayment(ctx, f.finance, payroll.CreatePaymentRequest{
		UserID: f.helper.UserID, PeriodID: p.ID, Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	voided, err := f.svc.VoidAdjustment(ctx, f.finance, bonus.ID, payroll.VoidRequest{Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusVoid, voided.Status)
	require.NotNil(t, voided.VoidReason)
	assert.Equal(t, "duplicate", *voided.VoidReason)

	_, err = f.svc.VoidAdjustment(ctx, f.finance, bonus.ID, payroll.VoidRequest{Reason: "again"})
	assert.ErrorIs(t, err, payrollerrors.ErrAlreadyVoid)

	_, err = f.svc.VoidPayment(ctx, f.finance, pay.ID, payroll.VoidRequest{Reason: "bounced"})
	require.NoError(t, err)

	rows, err := f.svc.Summary(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ledger, err := f.svc.Ledger(ctx, f.helper, p.ID, f.helper.UserID)
	require.NoError(t, err)
	require.Len(t, ledger.Adjustments, 1)
	assert.Equal(t, payroll.StatusVoid, ledger.Adjustments[0].Status)
	require.Len(t, ledger.Payments, 1)
	assert.Equal(t, payroll.StatusVoid, ledger.Payments[0].Status)
	assert.True(t, ledger.Summary.TotalBonus.IsZero())
	assert.True(t, ledger.Summary.TotalPaid.IsZero())

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.CreateAdjustment(ctx, f.finance, payroll.CreateAdjustmentRequest{
			UserID: f.helper.UserID, PeriodID: p.ID, Type: "TIP", Amount: decimal.NewFromInt(1), Reason: "x",
		})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidAdjustmentType)

		_, err = f.svc.CreatePayment(ctx, f.finance, payroll.CreatePaymentRequest{
			UserID: f.helper.UserID, PeriodID: p.ID, Amount: decimal.Zero,
		})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidAmount)

		_, err = f.svc.CreatePayment(ctx, f.finance, payroll.CreatePaymentRequest{
			UserID: uuid.NewString(), PeriodID: p.ID, Amount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, payrollerrors.ErrUserNotFound)
	})

	t.Run("crew sees only own ledger", func(t *testing.T) {
		_, err := f.svc.Ledger(ctx, f.driver, p.ID, f.helper.UserID)
		assert.ErrorIs(t, err, payrollerrors.ErrForbidden)
	})
}

func TestAccrueShipment(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 3, 5)
	p := f.period(t, ctx, "2024-03", "2024-03-01", "2024-03-31")

	done := f.shipment(t, "Bekasi", day(2024, 3, 4), phase.Completed, true)
	early := f.shipment(t, "Bekasi", day(2024, 4, 2), phase.Completed, true)
	pending := f.shipment(t, "Bekasi", day(2024, 3, 4), phase.Arrival, true)

	n, err := f.svc.AccrueShipment(ctx, done.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.svc.AccrueShipment(ctx, done.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.svc.AccrueShipment(ctx, early.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.svc.AccrueShipment(ctx, pending.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	res, err := f.svc.Generate(ctx, f.finance, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.RowsCreated)
}

func TestExportAndPayslip(t *testing.T) {
	f := newFixture(t)
	ctx := onDay(2024, 2, 1)
	p := f.period(t, ctx, "2024-01", "2024-01-01", "2024-01-31")
	empty := f.period(t, ctx, "2024-02", "2024-02-01", "2024-02-29")

	f.shipment(t, "Bogor", day(2024, 1, 10), phase.Completed, true)
	_, err := f.svc.Generate(ctx, f.finance, p.ID)
	require.NoError(t, err)

	body, err := f.svc.Export(ctx, p.ID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Summary", "Line Items"}, wb.GetSheetList())

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "Name", summary[0][0])

	lines, err := wb.GetRows("Line Items")
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	_, err = f.svc.Export(ctx, empty.ID)
	assert.ErrorIs(t, err, payrollerrors.ErrNoRows)

	pdf, err := f.svc.Payslip(ctx, f.driver, p.ID, f.driver.UserID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-1.4")))
	assert.Contains(t, string(pdf), "Net salary: 600.00")
}
