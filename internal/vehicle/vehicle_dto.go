package vehicle

type CreateVehicleRequest struct {
	PlateNumber string `json:"plate_number" binding:"required,max=32"`
	VehicleType string `json:"vehicle_type" binding:"required,max=64"`
	Description string `json:"description"`
}

type UpdateVehicleRequest struct {
	PlateNumber *string `json:"plate_number" binding:"omitempty,max=32"`
	VehicleType *string `json:"vehicle_type" binding:"omitempty,max=64"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type ListFilter struct {
	VehicleType string `form:"vehicle_type"`
	Q           string `form:"q"`
	Active      *bool  `form:"active"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

type VehicleResponse struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plate_number"`
	VehicleType string `json:"vehicle_type"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}
