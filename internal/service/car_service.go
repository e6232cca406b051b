package service

import (
	"context"
	"errors"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"
	"github.com/Gotsutoki/car-management-website/internal/repository"
	"github.com/Gotsutoki/car-management-website/internal/stock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CarService defines the business logic contract for car listings.
// Stock is only touched here via AdjustStock — the explicit admin path that
// exists alongside the sale engine; both record movements.
type CarService interface {
	Create(ctx context.Context, req dto.CreateCarRequest) (*dto.CarResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.CarResponse, error)
	List(ctx context.Context, filter dto.CarFilter) (*dto.CarListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCarRequest) (*dto.CarResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.CarResponse, error)
}

type carService struct {
	repo         repository.CarRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.StockMovementRepository
	rdb          *redis.Client
}

func NewCarService(
	repo repository.CarRepository,
	saleRepo repository.SaleRepository,
	movementRepo repository.StockMovementRepository,
	rdb *redis.Client,
) CarService {
	return &carService{repo: repo, saleRepo: saleRepo, movementRepo: movementRepo, rdb: rdb}
}

func (s *carService) Create(ctx context.Context, req dto.CreateCarRequest) (*dto.CarResponse, error) {
	if req.Year > time.Now().Year() {
		return nil, errors.New("year cannot be in the future")
	}
	car := &model.Car{
		Brand: req.Brand,
		Model: req.Model,
		Year:  req.Year,
		Price: req.Price,
		Stock: req.Stock,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}
	s.invalidateReportCache(ctx)
	return s.toResponse(ctx, car), nil
}

func (s *carService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CarResponse, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return s.toResponse(ctx, car), nil
}

func (s *carService) List(ctx context.Context, filter dto.CarFilter) (*dto.CarListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	cars, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CarResponse, 0, len(cars))
	for i := range cars {
		items = append(items, *s.toResponse(ctx, &cars[i]))
	}
	return &dto.CarListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *carService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCarRequest) (*dto.CarResponse, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if req.Brand != "" {
		car.Brand = req.Brand
	}
	if req.Model != "" {
		car.Model = req.Model
	}
	if req.Year != 0 {
		if req.Year > time.Now().Year() {
			return nil, errors.New("year cannot be in the future")
		}
		car.Year = req.Year
	}
	if !req.Price.IsZero() {
		// Existing sales keep their frozen total_price; only future sales
		// pick up the new price.
		car.Price = req.Price
	}
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, err
	}
	s.invalidateReportCache(ctx)
	return s.toResponse(ctx, car), nil
}

func (s *carService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarNotFound
		}
		return err
	}
	n, err := s.saleRepo.CountByCarID(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCarHasSales
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateReportCache(ctx)
	return nil
}

// AdjustStock applies a manual signed delta under the same row lock and
// guarded write the sale engine uses. Negative adjustments that would
// overdraw stock are rejected with the current count.
func (s *carService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.CarResponse, error) {
	var adjusted *model.Car
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		car, err := s.repo.LockByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCarNotFound
			}
			return err
		}

		if req.Delta < 0 && car.Stock < -req.Delta {
			return &stock.InsufficientStockError{CarID: car.ID, Available: car.Stock, Requested: -req.Delta}
		}

		rows, err := s.repo.ApplyStockDeltaTx(tx, id, req.Delta)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &InvariantViolationError{CarID: id, Delta: req.Delta}
		}

		mov := &model.StockMovement{
			CarID:       car.ID,
			Type:        "manual_adjust",
			Quantity:    req.Delta,
			StockBefore: car.Stock,
			StockAfter:  car.Stock + req.Delta,
			Reason:      req.Reason,
		}
		if err := s.movementRepo.CreateTx(tx, mov); err != nil {
			return err
		}

		car.Stock += req.Delta
		adjusted = car
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	s.invalidateReportCache(ctx)
	return s.toResponse(ctx, adjusted), nil
}

// invalidateReportCache drops cached report payloads after any car write.
// Best effort — a stale cache expires on its own TTL anyway.
func (s *carService) invalidateReportCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, statisticsCacheKey, averagePriceCacheKey).Err(); err != nil {
		log.Debug().Err(err).Msg("report cache invalidation failed")
	}
}

func (s *carService) toResponse(ctx context.Context, car *model.Car) *dto.CarResponse {
	soldCount, err := s.repo.SoldCount(ctx, car.ID)
	if err != nil {
		log.Debug().Err(err).Str("car_id", car.ID.String()).Msg("sold_count aggregation failed")
	}
	return &dto.CarResponse{
		ID:        car.ID.String(),
		Brand:     car.Brand,
		Model:     car.Model,
		Year:      car.Year,
		Price:     car.Price,
		Stock:     car.Stock,
		SoldCount: soldCount,
		CreatedAt: car.CreatedAt.UTC().Format(time.RFC3339),
	}
}
