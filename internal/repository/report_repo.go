package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRow is one car row returned by the raw report queries.
type ReportRow struct {
	ID    string
	Brand string
	Model string
	Year  int
	Price decimal.Decimal
	Stock int
}

// StatisticsRow is the single-row result of the statistics query.
type StatisticsRow struct {
	TotalCars    int64
	AveragePrice decimal.Decimal
	TotalStock   int64
	UniqueModels int64
}

// ReportRepository runs the read-only reporting queries as raw SQL, matching
// the shape of the data warehouse-style queries the dashboards consume.
type ReportRepository interface {
	LowStockCars(ctx context.Context, threshold int) ([]ReportRow, error)
	ExpensiveCars(ctx context.Context, minPrice decimal.Decimal) ([]ReportRow, error)
	Statistics(ctx context.Context) (StatisticsRow, error)
	AveragePrice(ctx context.Context) (*decimal.Decimal, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) LowStockCars(ctx context.Context, threshold int) ([]ReportRow, error) {
	var rows []ReportRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, brand, model, year, price, stock FROM cars WHERE stock < ? ORDER BY stock ASC`,
		threshold,
	).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ExpensiveCars(ctx context.Context, minPrice decimal.Decimal) ([]ReportRow, error) {
	var rows []ReportRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, brand, model, year, price, stock FROM cars WHERE price > ? ORDER BY price DESC`,
		minPrice,
	).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) Statistics(ctx context.Context) (StatisticsRow, error) {
	var row StatisticsRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)                               AS total_cars,
		        COALESCE(AVG(price), 0)                AS average_price,
		        COALESCE(SUM(stock), 0)                AS total_stock,
		        COUNT(DISTINCT (brand, model))         AS unique_models
		 FROM cars`,
	).Scan(&row).Error
	return row, err
}

func (r *reportRepo) AveragePrice(ctx context.Context) (*decimal.Decimal, error) {
	var avg *decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`SELECT AVG(price) FROM cars`).Scan(&avg).Error
	return avg, err
}
