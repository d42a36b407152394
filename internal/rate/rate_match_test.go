package rate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMatch_LongestContainedCluster(t *testing.T) {
	rates := []PayrollRate{
		{ID: uuid.New(), RouteCluster: "Jakarta", DriverBaseFee: decimal.NewFromInt(700)},
		{ID: uuid.New(), RouteCluster: "Jakarta Selatan", DriverBaseFee: decimal.NewFromInt(750)},
		{ID: uuid.New(), RouteCluster: "Bandung", DriverBaseFee: decimal.NewFromInt(900)},
	}

	tests := []struct {
		name        string
		destination string
		wantFee     int64
		wantOK      bool
	}{
		{"longest wins", "Gudang Cilandak, JAKARTA SELATAN", 750, true},
		{"shorter cluster", "Kemayoran, Jakarta Pusat", 700, true},
		{"case insensitive", "jl. asia afrika, bandung", 900, true},
		{"no match", "Surabaya", 0, false},
		{"empty destination", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(rates, tt.destination)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.True(t, got.DriverBaseFee.Equal(decimal.NewFromInt(tt.wantFee)))
			}
		})
	}
}

func TestMatch_IgnoresBlankCluster(t *testing.T) {
	_, ok := Match([]PayrollRate{{RouteCluster: "  "}}, "anywhere")
	assert.False(t, ok)
}
