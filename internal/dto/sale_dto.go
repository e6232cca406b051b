package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	CustomerID string `form:"customer" validate:"omitempty,uuid"`
	CarID      string `form:"car"      validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSaleRequest struct {
	CarID      string `json:"car_id"      validate:"required,uuid"`
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity"    validate:"required,min=1"`
}

// UpdateSaleRequest changes quantity and/or reassigns the sale to another car.
// Omitted fields keep their current values.
type UpdateSaleRequest struct {
	CarID    *string `json:"car_id"   validate:"omitempty,uuid"`
	Quantity *int    `json:"quantity" validate:"omitempty,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID           string          `json:"id"`
	CarID        string          `json:"car_id"`
	CarModel     string          `json:"car_model,omitempty"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    string          `json:"sale_date"`
}
