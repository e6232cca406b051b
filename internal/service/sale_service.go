package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"
	"github.com/Gotsutoki/car-management-website/internal/repository"
	"github.com/Gotsutoki/car-management-website/internal/stock"
	"github.com/Gotsutoki/car-management-website/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	UpdateSale(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo         repository.SaleRepository
	carRepo      repository.CarRepository
	customerRepo repository.CustomerRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *worker.Dispatcher

	lowStockThreshold int
}

func NewSaleService(
	repo repository.SaleRepository,
	carRepo repository.CarRepository,
	customerRepo repository.CustomerRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
	lowStockThreshold int,
) SaleService {
	return &saleService{
		repo:              repo,
		carRepo:           carRepo,
		customerRepo:      customerRepo,
		movementRepo:      movementRepo,
		dispatcher:        dispatcher,
		lowStockThreshold: lowStockThreshold,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

const (
	txMaxAttempts  = 3
	txRetryBackoff = 25 * time.Millisecond
)

// runSaleTx wraps runTx with bounded retries for transient row contention.
// Lock timeouts, deadlocks, and serialization failures are retried with a
// linear backoff; anything else aborts immediately. Exhausted retries
// surface as ErrBusy.
func (s *saleService) runSaleTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = runTx(ctx, s.repo.DB(), fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("sale tx contention, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txRetryBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%w: %v", ErrBusy, err)
}

// lowStockAlert is collected inside the transaction and enqueued only after
// a successful commit — alerts must never fire for rolled-back deductions.
type lowStockAlert struct {
	car        model.Car
	finalStock int
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// One serializable unit: lock car row → validate against the locked stock →
// deduct → persist sale (+ audit movement) → commit. Two concurrent creates on
// the same car serialize on the row lock, so both validations see committed
// stock and the count can never go negative.

func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, fmt.Errorf("invalid car_id: %w", err)
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}

	ok, err := s.customerRepo.Exists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCustomerNotFound
	}

	var sale model.Sale
	var alerts []lowStockAlert
	txErr := s.runSaleTx(ctx, func(tx *gorm.DB) error {
		alerts = alerts[:0]

		car, err := s.lockCar(tx, carID)
		if err != nil {
			return err
		}

		deltas, err := stock.PlanCreate(car, req.Quantity)
		if err != nil {
			return err
		}

		sale = model.Sale{
			CarID:      car.ID,
			CustomerID: customerID,
			Quantity:   req.Quantity,
			TotalPrice: car.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		return s.applyDeltas(tx, map[uuid.UUID]*model.Car{car.ID: car}, deltas, "sale",
			&sale.ID, fmt.Sprintf("sale of %d unit(s)", req.Quantity), &alerts)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifyLowStock(ctx, alerts)
	return saleToResponse(&sale), nil
}

// ── UpdateSale ────────────────────────────────────────────────────────────────
// Resolves the new car/quantity (omitted fields keep the old values), locks
// the one or two car rows involved in ascending id order, and applies the
// adjustor's plan. The same-car same-quantity case is a true no-op: stock is
// untouched and total_price is not recomputed, so repeated idempotent updates
// cause zero drift.

func (s *saleService) UpdateSale(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	var newCarID *uuid.UUID
	if req.CarID != nil {
		parsed, err := uuid.Parse(*req.CarID)
		if err != nil {
			return nil, fmt.Errorf("invalid car_id: %w", err)
		}
		newCarID = &parsed
	}

	var sale *model.Sale
	var alerts []lowStockAlert
	txErr := s.runSaleTx(ctx, func(tx *gorm.DB) error {
		alerts = alerts[:0]

		var err error
		sale, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		oldCarID := sale.CarID
		targetCarID := oldCarID
		if newCarID != nil {
			targetCarID = *newCarID
		}
		newQty := sale.Quantity
		if req.Quantity != nil {
			newQty = *req.Quantity
		}

		cars, err := s.lockCars(tx, oldCarID, targetCarID)
		if err != nil {
			return err
		}
		oldCar, newCar := cars[oldCarID], cars[targetCarID]

		deltas, err := stock.PlanUpdate(oldCar, sale.Quantity, newCar, newQty)
		if err != nil {
			return err
		}
		if len(deltas) == 0 {
			// No-op update: nothing to persist.
			return nil
		}

		if err := s.applyDeltas(tx, cars, deltas, "sale_update",
			&sale.ID, fmt.Sprintf("sale update to %d unit(s)", newQty), &alerts); err != nil {
			return err
		}

		sale.CarID = newCar.ID
		sale.Quantity = newQty
		sale.TotalPrice = newCar.Price.Mul(decimal.NewFromInt(int64(newQty)))
		return s.repo.UpdateTx(tx, sale)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifyLowStock(ctx, alerts)
	return saleToResponse(sale), nil
}

// ── DeleteSale ────────────────────────────────────────────────────────────────
// Restores the sale's full quantity to its car and removes the row. Restoring
// stock is never blocked; once deleted, the sale id cannot be revived.

func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return s.runSaleTx(ctx, func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		car, err := s.lockCar(tx, sale.CarID)
		if err != nil {
			return err
		}

		deltas := stock.PlanDelete(car, sale.Quantity)
		var discard []lowStockAlert
		if err := s.applyDeltas(tx, map[uuid.UUID]*model.Car{car.ID: car}, deltas, "sale_delete",
			&sale.ID, "sale deleted, stock restored", &discard); err != nil {
			return err
		}

		return s.repo.DeleteTx(tx, id)
	})
}

// ── Read side ─────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Internals ─────────────────────────────────────────────────────────────────

func (s *saleService) lockCar(tx *gorm.DB, id uuid.UUID) (*model.Car, error) {
	car, err := s.carRepo.LockByIDTx(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return car, nil
}

// lockCars locks one or two car rows in ascending id order, so two concurrent
// updates swapping cars cannot deadlock by acquiring them in opposite order.
func (s *saleService) lockCars(tx *gorm.DB, a, b uuid.UUID) (map[uuid.UUID]*model.Car, error) {
	ids := []uuid.UUID{a}
	if b != a {
		if bytes.Compare(b[:], a[:]) < 0 {
			ids = []uuid.UUID{b, a}
		} else {
			ids = append(ids, b)
		}
	}
	cars := make(map[uuid.UUID]*model.Car, len(ids))
	for _, id := range ids {
		car, err := s.lockCar(tx, id)
		if err != nil {
			return nil, err
		}
		cars[id] = car
	}
	return cars, nil
}

// applyDeltas applies each planned adjustment through the guarded stock write
// and records one audit movement per delta. A guard rejection after the plan
// validated under the lock is an invariant violation, never silently clamped.
func (s *saleService) applyDeltas(
	tx *gorm.DB,
	cars map[uuid.UUID]*model.Car,
	deltas []stock.Delta,
	movementType string,
	saleID *uuid.UUID,
	reason string,
	alerts *[]lowStockAlert,
) error {
	for _, d := range deltas {
		rows, err := s.carRepo.ApplyStockDeltaTx(tx, d.CarID, d.Quantity)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &InvariantViolationError{CarID: d.CarID, Delta: d.Quantity}
		}

		car := cars[d.CarID]
		after := car.Stock + d.Quantity
		mov := &model.StockMovement{
			CarID:       d.CarID,
			Type:        movementType,
			Quantity:    d.Quantity,
			StockBefore: car.Stock,
			StockAfter:  after,
			Reason:      reason,
			ReferenceID: saleID,
		}
		if err := s.movementRepo.CreateTx(tx, mov); err != nil {
			return err
		}

		if d.Quantity < 0 && after < s.lowStockThreshold {
			*alerts = append(*alerts, lowStockAlert{car: *car, finalStock: after})
		}
	}
	return nil
}

// notifyLowStock enqueues alert jobs after commit — best effort, fire & forget.
func (s *saleService) notifyLowStock(ctx context.Context, alerts []lowStockAlert) {
	if s.dispatcher == nil {
		return
	}
	for _, a := range alerts {
		payload := worker.StockAlertPayload{
			CarID:     a.car.ID.String(),
			Brand:     a.car.Brand,
			Model:     a.car.Model,
			Stock:     a.finalStock,
			Threshold: s.lowStockThreshold,
		}
		if err := s.dispatcher.EnqueueStockAlert(ctx, payload); err != nil {
			log.Error().Err(err).Str("car_id", payload.CarID).Msg("failed to enqueue low-stock alert")
		}
	}
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:         s.ID.String(),
		CarID:      s.CarID.String(),
		CustomerID: s.CustomerID.String(),
		Quantity:   s.Quantity,
		TotalPrice: s.TotalPrice,
		CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.Car != nil {
		resp.CarModel = s.Car.Brand + " " + s.Car.Model
	}
	if s.Customer != nil {
		resp.CustomerName = s.Customer.Name
	}
	return resp
}
