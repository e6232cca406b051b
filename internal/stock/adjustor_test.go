package stock

import (
	"errors"
	"testing"

	"github.com/Gotsutoki/car-management-website/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func car(stock int) *model.Car {
	return &model.Car{ID: uuid.New(), Stock: stock}
}

func TestPlanCreate_DeductsQuantity(t *testing.T) {
	c := car(10)
	deltas, err := PlanCreate(c, 3)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, c.ID, deltas[0].CarID)
	assert.Equal(t, -3, deltas[0].Quantity)
}

func TestPlanCreate_ExactStockSucceeds(t *testing.T) {
	c := car(4)
	deltas, err := PlanCreate(c, 4)
	require.NoError(t, err)
	assert.Equal(t, -4, deltas[0].Quantity)
}

func TestPlanCreate_InsufficientStock(t *testing.T) {
	c := car(2)
	_, err := PlanCreate(c, 5)

	var insufficientErr *InsufficientStockError
	require.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, c.ID, insufficientErr.CarID)
	assert.Equal(t, 2, insufficientErr.Available)
	assert.Equal(t, 5, insufficientErr.Requested)
}

func TestPlanUpdate_SameCarSameQuantityIsNoOp(t *testing.T) {
	c := car(10)
	deltas, err := PlanUpdate(c, 3, c, 3)
	require.NoError(t, err)
	assert.Empty(t, deltas)
}

func TestPlanUpdate_SameCarQuantityIncrease(t *testing.T) {
	// Car already has 3 units deducted by the sale; raising to 5 only needs 2 more.
	c := car(7)
	deltas, err := PlanUpdate(c, 3, c, 5)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, -2, deltas[0].Quantity)
}

func TestPlanUpdate_SameCarIncreaseExceedingStock(t *testing.T) {
	// diff = 3 but only 2 left.
	c := car(2)
	_, err := PlanUpdate(c, 2, c, 5)

	var insufficientErr *InsufficientStockError
	require.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, 2, insufficientErr.Available)
	assert.Equal(t, 3, insufficientErr.Requested)
}

func TestPlanUpdate_SameCarIncreaseEqualToStock(t *testing.T) {
	c := car(2)
	deltas, err := PlanUpdate(c, 2, c, 4)
	require.NoError(t, err)
	assert.Equal(t, -2, deltas[0].Quantity)
}

func TestPlanUpdate_SameCarQuantityDecrease(t *testing.T) {
	// Decreases always succeed, even at zero stock.
	c := car(0)
	deltas, err := PlanUpdate(c, 5, c, 1)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 4, deltas[0].Quantity)
}

func TestPlanUpdate_ReassignRestoresOldDeductsNew(t *testing.T) {
	oldCar := car(5)
	newCar := car(3)

	deltas, err := PlanUpdate(oldCar, 2, newCar, 2)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, oldCar.ID, deltas[0].CarID)
	assert.Equal(t, 2, deltas[0].Quantity)
	assert.Equal(t, newCar.ID, deltas[1].CarID)
	assert.Equal(t, -2, deltas[1].Quantity)
}

func TestPlanUpdate_ReassignValidatesNewCarOwnStock(t *testing.T) {
	// The old car's restoration must not count toward the new car's stock:
	// new car has 1 unit, sale wants 2, so the plan fails even though the
	// old car gets 2 units back in the same transaction.
	oldCar := car(0)
	newCar := car(1)

	_, err := PlanUpdate(oldCar, 2, newCar, 2)

	var insufficientErr *InsufficientStockError
	require.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, newCar.ID, insufficientErr.CarID)
	assert.Equal(t, 1, insufficientErr.Available)
	assert.Equal(t, 2, insufficientErr.Requested)
}

func TestPlanUpdate_ReassignWithQuantityChange(t *testing.T) {
	oldCar := car(5)
	newCar := car(10)

	deltas, err := PlanUpdate(oldCar, 2, newCar, 7)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, 2, deltas[0].Quantity)
	assert.Equal(t, -7, deltas[1].Quantity)
}

func TestPlanDelete_AlwaysRestores(t *testing.T) {
	c := car(0)
	deltas := PlanDelete(c, 3)
	require.Len(t, deltas, 1)
	assert.Equal(t, c.ID, deltas[0].CarID)
	assert.Equal(t, 3, deltas[0].Quantity)
}
