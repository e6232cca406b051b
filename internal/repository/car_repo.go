package repository

import (
	"context"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CarRepository defines the data access contract for cars.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type CarRepository interface {
	Create(ctx context.Context, c *model.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error)
	List(ctx context.Context, filter dto.CarFilter) ([]model.Car, int64, error)
	Update(ctx context.Context, c *model.Car) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SoldCount sums sale quantities for a car — read-side projection only.
	SoldCount(ctx context.Context, id uuid.UUID) (int, error)

	// Used inside transactions — callers must pass the tx instance.
	// LockByIDTx acquires a FOR UPDATE row lock; concurrent writers on the
	// same car block here until the holding transaction commits.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Car, error)

	// ApplyStockDeltaTx adds delta to the car's stock, guarded so the row is
	// only written when the result stays non-negative. Returns the number of
	// rows affected: 0 means the guard rejected the write.
	ApplyStockDeltaTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type carRepo struct{ db *gorm.DB }

func NewCarRepository(db *gorm.DB) CarRepository { return &carRepo{db: db} }

func (r *carRepo) Create(ctx context.Context, c *model.Car) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *carRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	var c model.Car
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *carRepo) List(ctx context.Context, filter dto.CarFilter) ([]model.Car, int64, error) {
	var cars []model.Car
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Car{})

	if filter.Brand != "" {
		q = q.Where("brand ILIKE ?", "%"+filter.Brand+"%")
	}
	if filter.Model != "" {
		q = q.Where("model ILIKE ?", "%"+filter.Model+"%")
	}
	if filter.YearMin > 0 {
		q = q.Where("year >= ?", filter.YearMin)
	}
	if filter.YearMax > 0 {
		q = q.Where("year <= ?", filter.YearMax)
	}
	if filter.PriceMin != "" {
		q = q.Where("price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != "" {
		q = q.Where("price <= ?", filter.PriceMax)
	}
	if filter.StockMax > 0 {
		q = q.Where("stock <= ?", filter.StockMax)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch filter.OrderBy {
	case "price", "year", "stock":
		order = filter.OrderBy + " ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order(order).Limit(filter.Limit).Offset(offset).Find(&cars).Error
	return cars, total, err
}

func (r *carRepo) Update(ctx context.Context, c *model.Car) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *carRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Car{}, id).Error
}

func (r *carRepo) SoldCount(ctx context.Context, id uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("SUM(quantity)").
		Where("car_id = ?", id).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *carRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Car, error) {
	var c model.Car
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *carRepo) ApplyStockDeltaTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	res := tx.Model(&model.Car{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *carRepo) DB() *gorm.DB { return r.db }
