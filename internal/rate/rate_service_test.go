package rate_test

import (
	"context"
	"errors"
	"testing"

	"go-fleetpay/internal/rate"
	rateerrors "go-fleetpay/internal/rate/errors"
	rateMock "go-fleetpay/internal/rate/mock"
	"go-fleetpay/internal/shared/testdb"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRateService_CreateAndDuplicate(t *testing.T) {
	db := testdb.Open(t, &rate.PayrollRate{})
	svc := rate.NewService(rate.NewRepository(db), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, rate.CreateRateRequest{
		RouteCluster:  " Jakarta Selatan ",
		VehicleType:   "CDD",
		DriverBaseFee: decimal.NewFromInt(750),
		HelperBaseFee: decimal.NewFromInt(500),
		FoodAllowance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jakarta Selatan", created.RouteCluster)

	_, err = svc.Create(ctx, rate.CreateRateRequest{RouteCluster: "jakarta selatan", VehicleType: "cdd"})
	assert.ErrorIs(t, err, rateerrors.ErrDuplicateRate)

	_, err = svc.Create(ctx, rate.CreateRateRequest{
		RouteCluster:  "Bogor",
		VehicleType:   "CDD",
		DriverBaseFee: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, rateerrors.ErrNegativeFee)

	list, total, err := svc.List(ctx, rate.ListFilter{VehicleType: "cdd"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestRateService_Match(t *testing.T) {
	db := testdb.Open(t, &rate.PayrollRate{})
	svc := rate.NewService(rate.NewRepository(db), nil)
	ctx := context.Background()

	for _, c := range []string{"Jakarta", "Jakarta Selatan"} {
		_, err := svc.Create(ctx, rate.CreateRateRequest{
			RouteCluster:  c,
			VehicleType:   "CDD",
			DriverBaseFee: decimal.NewFromInt(700),
			HelperBaseFee: decimal.NewFromInt(450),
		})
		require.NoError(t, err)
	}

	got, err := svc.Match(ctx, "DC Cilandak, Jakarta Selatan", "cdd")
	require.NoError(t, err)
	require.True(t, got.Matched)
	assert.Equal(t, "Jakarta Selatan", got.Rate.RouteCluster)

	got, err = svc.Match(ctx, "DC Cilandak, Jakarta Selatan", "FUSO")
	require.NoError(t, err)
	assert.False(t, got.Matched)
	assert.Nil(t, got.Rate)
}

func TestRateService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("duplicate pair", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := rateMock.NewMockRepository(ctrl)
		svc := rate.NewService(repo, nil)
		cluster := "Bandung"

		repo.EXPECT().FindByID(ctx, id.String()).Return(&rate.PayrollRate{ID: id, RouteCluster: "Bogor", VehicleType: "CDD"}, nil)
		repo.EXPECT().ExistsPair(ctx, "Bandung", "CDD", id.String()).Return(true, nil)

		_, err := svc.Update(ctx, id.String(), rate.UpdateRateRequest{RouteCluster: &cluster})
		assert.ErrorIs(t, err, rateerrors.ErrDuplicateRate)
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := rateMock.NewMockRepository(ctrl)
		svc := rate.NewService(repo, nil)
		fee := decimal.RequireFromString("812.345")

		repo.EXPECT().FindByID(ctx, id.String()).Return(&rate.PayrollRate{ID: id, RouteCluster: "Bogor", VehicleType: "CDD"}, nil)
		repo.EXPECT().ExistsPair(ctx, "Bogor", "CDD", id.String()).Return(false, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		resp, err := svc.Update(ctx, id.String(), rate.UpdateRateRequest{DriverBaseFee: &fee})
		require.NoError(t, err)
		assert.Equal(t, "812.35", resp.DriverBaseFee.StringFixed(2))
	})

	t.Run("repo error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := rateMock.NewMockRepository(ctrl)
		svc := rate.NewService(repo, nil)
		boom := errors.New("db down")

		repo.EXPECT().FindByID(ctx, id.String()).Return(nil, boom)

		_, err := svc.Update(ctx, id.String(), rate.UpdateRateRequest{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := rate.NewService(rateMock.NewMockRepository(gomock.NewController(t)), nil)
		_, err := svc.Update(ctx, "abc", rate.UpdateRateRequest{})
		assert.ErrorIs(t, err, rateerrors.ErrInvalidRateID)
	})
}

func TestRateService_DeleteNotFound(t *testing.T) {
	db := testdb.Open(t, &rate.PayrollRate{})
	svc := rate.NewService(rate.NewRepository(db), nil)

	err := svc.Delete(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, rateerrors.ErrRateNotFound)
}
