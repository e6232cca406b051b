package dto

import "github.com/shopspring/decimal"

// CarFilter is bound from the query string of GET /v1/cars.
type CarFilter struct {
	Brand    string `form:"brand"`
	Model    string `form:"model"`
	YearMin  int    `form:"year_min"`
	YearMax  int    `form:"year_max"`
	PriceMin string `form:"price_min"`
	PriceMax string `form:"price_max"`
	StockMax int    `form:"stock_max"`
	OrderBy  string `form:"order_by" validate:"omitempty,oneof=price year stock created_at"`
	Page     int    `form:"page,default=1"  validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type CreateCarRequest struct {
	Brand string          `json:"brand" validate:"required,min=1,max=100"`
	Model string          `json:"model" validate:"required,min=1,max=100"`
	Year  int             `json:"year"  validate:"required,min=1886"`
	Price decimal.Decimal `json:"price" validate:"required,gt=0"`
	Stock int             `json:"stock" validate:"min=0"`
}

type UpdateCarRequest struct {
	Brand string          `json:"brand" validate:"omitempty,min=1,max=100"`
	Model string          `json:"model" validate:"omitempty,min=1,max=100"`
	Year  int             `json:"year"  validate:"omitempty,min=1886"`
	Price decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
}

// AdjustStockRequest applies a manual signed delta to a car's stock.
// The adjustment is rejected when it would drive stock negative.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type CarResponse struct {
	ID    string          `json:"id"`
	Brand string          `json:"brand"`
	Model string          `json:"model"`
	Year  int             `json:"year"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	// SoldCount is an on-demand aggregation over sales, never stored.
	SoldCount int    `json:"sold_count"`
	CreatedAt string `json:"created_at"`
}

type CarListResponse struct {
	Data  []CarResponse `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
