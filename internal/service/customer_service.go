package service

import (
	"context"
	"errors"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"
	"github.com/Gotsutoki/car-management-website/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrCustomerHasSales blocks deleting a customer whose sales still exist.
// Cascading the delete would erase the sales without restoring car stock,
// silently breaking the deduction audit trail.
var ErrCustomerHasSales = errors.New("customer has recorded sales and cannot be deleted")

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo     repository.CustomerRepository
	saleRepo repository.SaleRepository
}

func NewCustomerService(repo repository.CustomerRepository, saleRepo repository.SaleRepository) CustomerService {
	return &customerService{repo: repo, saleRepo: saleRepo}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c), nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return s.toResponse(ctx, c), nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, *s.toResponse(ctx, &customers[i]))
	}
	return &dto.CustomerListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Phone != "" {
		c.Phone = req.Phone
	}
	if req.Address != "" {
		c.Address = req.Address
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c), nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	n, err := s.saleRepo.CountByCustomerID(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCustomerHasSales
	}
	return s.repo.Delete(ctx, id)
}

func (s *customerService) toResponse(ctx context.Context, c *model.Customer) *dto.CustomerResponse {
	agg, err := s.repo.Aggregates(ctx, c.ID)
	if err != nil {
		log.Debug().Err(err).Str("customer_id", c.ID.String()).Msg("customer aggregates failed")
	}
	return &dto.CustomerResponse{
		ID:              c.ID.String(),
		Name:            c.Name,
		Phone:           c.Phone,
		Address:         c.Address,
		SalesCount:      agg.SalesCount,
		TotalCarsBought: agg.TotalCarsBought,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
