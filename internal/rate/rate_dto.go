package rate

import "github.com/shopspring/decimal"

type CreateRateRequest struct {
	RouteCluster  string          `json:"route_cluster" binding:"required,max=255"`
	VehicleType   string          `json:"vehicle_type" binding:"required,max=64"`
	DriverBaseFee decimal.Decimal `json:"driver_base_fee"`
	HelperBaseFee decimal.Decimal `json:"helper_base_fee"`
	FoodAllowance decimal.Decimal `json:"food_allowance"`
}

type UpdateRateRequest struct {
	RouteCluster  *string          `json:"route_cluster" binding:"omitempty,max=255"`
	VehicleType   *string          `json:"vehicle_type" binding:"omitempty,max=64"`
	DriverBaseFee *decimal.Decimal `json:"driver_base_fee"`
	HelperBaseFee *decimal.Decimal `json:"helper_base_fee"`
	FoodAllowance *decimal.Decimal `json:"food_allowance"`
}

type ListFilter struct {
	VehicleType string `form:"vehicle_type"`
	Q           string `form:"q"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

type RateResponse struct {
	ID            string          `json:"id"`
	RouteCluster  string          `json:"route_cluster"`
	VehicleType   string          `json:"vehicle_type"`
	DriverBaseFee decimal.Decimal `json:"driver_base_fee"`
	HelperBaseFee decimal.Decimal `json:"helper_base_fee"`
	FoodAllowance decimal.Decimal `json:"food_allowance"`
}

type MatchResponse struct {
	Matched bool          `json:"matched"`
	Rate    *RateResponse `json:"rate"`
}

type MatchQuery struct {
	Destination string `form:"destination" binding:"required"`
	VehicleType string `form:"vehicle_type" binding:"required"`
}
