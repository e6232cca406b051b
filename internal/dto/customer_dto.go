package dto

type CustomerFilter struct {
	Name  string `form:"name"`
	Page  int    `form:"page,default=1"  validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"    validate:"required,min=2,max=100"`
	Phone   string `json:"phone"   validate:"required,min=5,max=15"`
	Address string `json:"address" validate:"required"`
}

type UpdateCustomerRequest struct {
	Name    string `json:"name"    validate:"omitempty,min=2,max=100"`
	Phone   string `json:"phone"   validate:"omitempty,min=5,max=15"`
	Address string `json:"address" validate:"omitempty"`
}

type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	// SalesCount and TotalCarsBought are read-side aggregations over sales.
	SalesCount      int64  `json:"sales_count"`
	TotalCarsBought int64  `json:"total_cars_bought"`
	CreatedAt       string `json:"created_at"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
