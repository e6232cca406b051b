package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"
	"github.com/Gotsutoki/car-management-website/internal/repository"
	"github.com/Gotsutoki/car-management-website/internal/stock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ─── In-memory stubs ─────────────────────────────────────────────────────────
// DB() returns nil, so runTx invokes the transaction body directly. Plans
// validate before any delta is applied, which is what keeps these stubs honest
// without rollback support. Every stub guards its state with a mutex so the
// concurrency tests can hammer the engine from multiple goroutines.

type stubCarRepo struct {
	mu   sync.Mutex
	cars map[uuid.UUID]*model.Car

	// locked records the order in which rows were locked.
	locked []uuid.UUID
	// lockErrs is consumed one per LockByIDTx call to simulate contention.
	lockErrs []error
	// failGuard forces ApplyStockDeltaTx to report zero rows affected.
	failGuard bool
	// findErr simulates a repository failure that is not a missing row.
	findErr error
}

func newStubCarRepo(cars ...*model.Car) *stubCarRepo {
	m := make(map[uuid.UUID]*model.Car, len(cars))
	for _, c := range cars {
		m[c.ID] = c
	}
	return &stubCarRepo{cars: m}
}

func (r *stubCarRepo) DB() *gorm.DB { return nil }

func (r *stubCarRepo) Create(ctx context.Context, c *model.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[c.ID] = c
	return nil
}

func (r *stubCarRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.cars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

// stock returns the current count without racing concurrent writers.
func (r *stubCarRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cars[id].Stock
}

func (r *stubCarRepo) List(ctx context.Context, f dto.CarFilter) ([]model.Car, int64, error) {
	return nil, 0, nil
}

func (r *stubCarRepo) Update(ctx context.Context, c *model.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[c.ID] = c
	return nil
}

func (r *stubCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cars, id)
	return nil
}

func (r *stubCarRepo) SoldCount(ctx context.Context, id uuid.UUID) (int, error) { return 0, nil }

func (r *stubCarRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lockErrs) > 0 {
		err := r.lockErrs[0]
		r.lockErrs = r.lockErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	c, ok := r.cars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r.locked = append(r.locked, id)
	cp := *c
	return &cp, nil
}

// ApplyStockDeltaTx mirrors the guarded UPDATE: validate and mutate under one
// lock, never letting the count go negative.
func (r *stubCarRepo) ApplyStockDeltaTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGuard {
		return 0, nil
	}
	c, ok := r.cars[id]
	if !ok || c.Stock+delta < 0 {
		return 0, nil
	}
	c.Stock += delta
	return 1, nil
}

type stubSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*model.Sale

	// findErr simulates a repository failure that is not a missing row.
	findErr error
}

func newStubSaleRepo() *stubSaleRepo { return &stubSaleRepo{sales: map[uuid.UUID]*model.Sale{}} }

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) List(ctx context.Context, f dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) CountByCarID(ctx context.Context, carID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sales {
		if s.CarID == carID {
			n++
		}
	}
	return n, nil
}

func (r *stubSaleRepo) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sales {
		if s.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *stubSaleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) UpdateTx(tx *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, id)
	return nil
}

func (r *stubSaleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer

	// findErr simulates a repository failure that is not a missing row.
	findErr error
}

func newStubCustomerRepo(customers ...*model.Customer) *stubCustomerRepo {
	m := make(map[uuid.UUID]*model.Customer, len(customers))
	for _, c := range customers {
		m[c.ID] = c
	}
	return &stubCustomerRepo{customers: m}
}

func (r *stubCustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) List(ctx context.Context, f dto.CustomerFilter) ([]model.Customer, int64, error) {
	return nil, 0, nil
}

func (r *stubCustomerRepo) Update(ctx context.Context, c *model.Customer) error { return nil }

func (r *stubCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.customers[id]
	return ok, nil
}

func (r *stubCustomerRepo) Aggregates(ctx context.Context, id uuid.UUID) (repository.CustomerAggregates, error) {
	return repository.CustomerAggregates{}, nil
}

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func (r *stubMovementRepo) Create(ctx context.Context, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(ctx context.Context, f repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

// ─── Fixture ─────────────────────────────────────────────────────────────────

type engineFixture struct {
	svc       SaleService
	cars      *stubCarRepo
	sales     *stubSaleRepo
	customers *stubCustomerRepo
	movements *stubMovementRepo
	customer  *model.Customer
}

func newEngineFixture(t *testing.T, cars ...*model.Car) *engineFixture {
	t.Helper()
	customer := &model.Customer{ID: uuid.New(), Name: "Ana Torres", Phone: "555-0101"}
	f := &engineFixture{
		cars:      newStubCarRepo(cars...),
		sales:     newStubSaleRepo(),
		customers: newStubCustomerRepo(customer),
		movements: &stubMovementRepo{},
		customer:  customer,
	}
	f.svc = NewSaleService(f.sales, f.cars, f.customers, f.movements, nil, 5)
	return f
}

func testCar(stock int, price int64) *model.Car {
	return &model.Car{
		ID:    uuid.New(),
		Brand: "Toyota",
		Model: "Corolla",
		Year:  2022,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}
}

// ─── CreateSale ──────────────────────────────────────────────────────────────

func TestCreateSale_DeductsStockAndFreezesPrice(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)

	resp, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, f.cars.cars[car.ID].Stock)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(300)), "total_price = %s", resp.TotalPrice)

	require.Len(t, f.movements.movements, 1)
	mov := f.movements.movements[0]
	assert.Equal(t, "sale", mov.Type)
	assert.Equal(t, -3, mov.Quantity)
	assert.Equal(t, 10, mov.StockBefore)
	assert.Equal(t, 7, mov.StockAfter)
	require.NotNil(t, mov.ReferenceID)
	assert.Equal(t, resp.ID, mov.ReferenceID.String())
}

func TestCreateSale_InsufficientStockLeavesStateUntouched(t *testing.T) {
	car := testCar(2, 100)
	f := newEngineFixture(t, car)

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   5,
	})

	var insufficientErr *stock.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 2, insufficientErr.Available)
	assert.Equal(t, 5, insufficientErr.Requested)

	assert.Equal(t, 2, f.cars.cars[car.ID].Stock)
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.movements.movements)
}

func TestCreateSale_ExactStockDrainsToZero(t *testing.T) {
	car := testCar(4, 100)
	f := newEngineFixture(t, car)

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.cars.cars[car.ID].Stock)
}

func TestCreateSale_ConcurrentCreatesDrainStockExactly(t *testing.T) {
	const n = 8
	car := testCar(n, 100)
	f := newEngineFixture(t, car)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
				CarID:      car.ID.String(),
				CustomerID: f.customer.ID.String(),
				Quantity:   1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err, "with stock=%d, %d single-unit sales must all succeed", n, n)
	}
	assert.Equal(t, 0, f.cars.stock(car.ID))
	assert.Equal(t, n, f.sales.count())

	// One more unit than ever existed: rejected, stock stays at zero.
	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   1,
	})
	var insufficientErr *stock.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 0, insufficientErr.Available)
	assert.Equal(t, 0, f.cars.stock(car.ID), "stock must never go negative")
	assert.Equal(t, n, f.sales.count())
}

func TestCreateSale_UnknownCustomer(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: uuid.NewString(),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCreateSale_UnknownCar(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      uuid.NewString(),
		CustomerID: f.customer.ID.String(),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, ErrCarNotFound)
}

// ─── UpdateSale ──────────────────────────────────────────────────────────────

func TestUpdateSale_QuantityIncrease(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)

	created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.cars.cars[car.ID].Stock)

	saleID := uuid.MustParse(created.ID)
	qty := 5
	updated, err := f.svc.UpdateSale(context.Background(), saleID, dto.UpdateSaleRequest{Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, 5, f.cars.cars[car.ID].Stock)
	assert.Equal(t, 5, updated.Quantity)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(500)), "total_price = %s", updated.TotalPrice)
}

func TestUpdateSale_QuantityDecreaseRestoresStock(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)

	created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)

	qty := 1
	_, err = f.svc.UpdateSale(context.Background(), uuid.MustParse(created.ID), dto.UpdateSaleRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 9, f.cars.cars[car.ID].Stock)
}

func TestUpdateSale_NoOpTouchesNothing(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)

	created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)
	movementsBefore := len(f.movements.movements)

	// Raise the car's price after the sale: a no-op update must not pick it up.
	f.cars.cars[car.ID].Price = decimal.NewFromInt(999)

	qty := 3
	updated, err := f.svc.UpdateSale(context.Background(), uuid.MustParse(created.ID), dto.UpdateSaleRequest{Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, 7, f.cars.cars[car.ID].Stock)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(300)), "no-op must not recompute total_price")
	assert.Len(t, f.movements.movements, movementsBefore)
}

func TestUpdateSale_ReassignToOtherCar(t *testing.T) {
	carX := testCar(10, 100)
	carY := testCar(6, 200)
	f := newEngineFixture(t, carX, carY)

	created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      carX.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.cars.cars[carX.ID].Stock)

	newCarID := carY.ID.String()
	updated, err := f.svc.UpdateSale(context.Background(), uuid.MustParse(created.ID), dto.UpdateSaleRequest{CarID: &newCarID})
	require.NoError(t, err)

	assert.Equal(t, 10, f.cars.cars[carX.ID].Stock, "old car stock fully restored")
	assert.Equal(t, 3, f.cars.cars[carY.ID].Stock, "new car stock deducted")
	assert.Equal(t, carY.ID.String(), updated.CarID)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(600)), "total_price from new car's price")
}

func TestUpdateSale_ReassignValidatesNewCarOwnStock(t *testing.T) {
	carX := testCar(10, 100)
	carY := testCar(2, 200)
	f := newEngineFixture(t, carX, carY)

	created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      carX.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)

	newCarID := carY.ID.String()
	_, err = f.svc.UpdateSale(context.Background(), uuid.MustParse(created.ID), dto.UpdateSaleRequest{CarID: &newCarID})

	var insufficientErr *stock.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, carY.ID, insufficientErr.CarID)

	// Nothing moved: the plan failed before any delta was applied.
	assert.Equal(t, 7, f.cars.cars[carX.ID].Stock)
	assert.Equal(t, 2, f.cars.cars[carY.ID].Stock)
	assert.Equal(t, carX.ID, f.sales.sales[uuid.MustParse(created.ID)].CarID)
}

func TestUpdateSale_LocksCarsInAscendingIDOrder(t *testing.T) {
	low := testCar(5, 100)
	low.ID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	high := testCar(5, 200)
	high.ID = uuid.MustParse("eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee")

	// Two updates swapping cars in opposite directions must acquire the row
	// locks in the same order, or they could deadlock against each other.
	for name, tc := range map[string]struct{ from, to *model.Car }{
		"reassign upward":   {from: low, to: high},
		"reassign downward": {from: high, to: low},
	} {
		t.Run(name, func(t *testing.T) {
			f := newEngineFixture(t, low, high)
			created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
				CarID:      tc.from.ID.String(),
				CustomerID: f.customer.ID.String(),
				Quantity:   2,
			})
			require.NoError(t, err)

			f.cars.locked = nil
			newCarID := tc.to.ID.String()
			_, err = f.svc.UpdateSale(context.Background(), uuid.MustParse(created.ID), dto.UpdateSaleRequest{CarID: &newCarID})
			require.NoError(t, err)

			require.Equal(t, []uuid.UUID{low.ID, high.ID}, f.cars.locked)
		})
	}
}

func TestUpdateSale_NotFound(t *testing.T) {
	f := newEngineFixture(t)
	qty := 1
	_, err := f.svc.UpdateSale(context.Background(), uuid.New(), dto.UpdateSaleRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

// ─── DeleteSale ──────────────────────────────────────────────────────────────

func TestDeleteSale_RestoresStockRoundTrip(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)

	created, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.cars.cars[car.ID].Stock)

	saleID := uuid.MustParse(created.ID)
	require.NoError(t, f.svc.DeleteSale(context.Background(), saleID))

	assert.Equal(t, 10, f.cars.cars[car.ID].Stock, "create+delete is a stock no-op")
	assert.Empty(t, f.sales.sales)

	require.Len(t, f.movements.movements, 2)
	assert.Equal(t, "sale_delete", f.movements.movements[1].Type)
	assert.Equal(t, 3, f.movements.movements[1].Quantity)

	assert.ErrorIs(t, f.svc.DeleteSale(context.Background(), saleID), ErrSaleNotFound)
}

// ─── Read side ───────────────────────────────────────────────────────────────

func TestGetSale_MissingRowIsNotFound(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.svc.GetSale(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestGetSale_RepositoryFailureIsNotMaskedAsNotFound(t *testing.T) {
	f := newEngineFixture(t)
	f.sales.findErr = errors.New("connection refused")

	_, err := f.svc.GetSale(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSaleNotFound, "an outage must not read as a missing sale")
}

// ─── Failure modes ───────────────────────────────────────────────────────────

func TestCreateSale_GuardRejectionIsInvariantViolation(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)
	f.cars.failGuard = true

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})

	var invariantErr *InvariantViolationError
	require.ErrorAs(t, err, &invariantErr)
	assert.Equal(t, car.ID, invariantErr.CarID)
	assert.Equal(t, -3, invariantErr.Delta)
}

func TestCreateSale_RetriesTransientContention(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)
	f.cars.lockErrs = []error{
		&pgconn.PgError{Code: "40P01"},
		&pgconn.PgError{Code: "55P03"},
	}

	resp, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.NoError(t, err, "third attempt should succeed")
	assert.Equal(t, 7, f.cars.cars[car.ID].Stock)
	assert.Equal(t, 3, resp.Quantity)
}

func TestCreateSale_ExhaustedRetriesSurfaceAsBusy(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)
	f.cars.lockErrs = []error{
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40001"},
	}

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 10, f.cars.cars[car.ID].Stock)
}

func TestCreateSale_NonRetryableErrorFailsFast(t *testing.T) {
	car := testCar(10, 100)
	f := newEngineFixture(t, car)
	f.cars.lockErrs = []error{
		&pgconn.PgError{Code: "23505"}, // unique_violation is not contention
	}

	_, err := f.svc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CarID:      car.ID.String(),
		CustomerID: f.customer.ID.String(),
		Quantity:   3,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBusy)
	assert.Empty(t, f.cars.lockErrs, "must not retry a non-transient error")
}
