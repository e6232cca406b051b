package dto

import "github.com/shopspring/decimal"

// LowStockCar is one row of the low-stock report.
type LowStockCar struct {
	ID    string          `json:"id"`
	Brand string          `json:"brand"`
	Model string          `json:"model"`
	Year  int             `json:"year"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// ExpensiveCar is one row of the expensive-cars report.
type ExpensiveCar struct {
	ID    string          `json:"id"`
	Brand string          `json:"brand"`
	Model string          `json:"model"`
	Year  int             `json:"year"`
	Price decimal.Decimal `json:"price"`
}

// StatisticsResponse aggregates the whole inventory. Served from a short-TTL
// redis cache invalidated on car writes.
type StatisticsResponse struct {
	TotalCars    int64           `json:"total_cars"`
	AveragePrice decimal.Decimal `json:"average_price"`
	TotalStock   int64           `json:"total_stock"`
	UniqueModels int64           `json:"unique_models"`
}

type AveragePriceResponse struct {
	AveragePrice decimal.Decimal `json:"average_price"`
}
