package repository

import (
	"context"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerAggregates are read-side projections over the customer's sales.
type CustomerAggregates struct {
	SalesCount      int64
	TotalCarsBought int64
}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error)
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Exists is the referential-integrity check the sale engine needs;
	// it never touches customer fields.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	Aggregates(ctx context.Context, id uuid.UUID) (CustomerAggregates, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Customer{})
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Customer{}, id).Error
}

func (r *customerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *customerRepo) Aggregates(ctx context.Context, id uuid.UUID) (CustomerAggregates, error) {
	var agg CustomerAggregates
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COUNT(*) AS sales_count, COALESCE(SUM(quantity), 0) AS total_cars_bought").
		Where("customer_id = ?", id).
		Scan(&agg).Error
	return agg, err
}
