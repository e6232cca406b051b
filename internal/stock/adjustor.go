// Package stock computes the stock deltas implied by sale lifecycle events.
// All functions are pure: they read car state, validate feasibility, and
// return a plan of signed adjustments. Applying the plan — under a row lock,
// inside a transaction — is the sale service's job. Keeping the planning
// side-effect free lets it be unit-tested without any storage.
package stock

import (
	"fmt"

	"github.com/Gotsutoki/car-management-website/internal/model"

	"github.com/google/uuid"
)

// Delta is a signed stock adjustment for one car.
// Negative = units deducted (sold), positive = units returned.
type Delta struct {
	CarID    uuid.UUID
	Quantity int
}

// InsufficientStockError reports that a plan would overdraw a car's stock.
// Available is the stock value the validation ran against, so callers can
// surface it to the client.
type InsufficientStockError struct {
	CarID     uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for car %s: only %d left, %d requested", e.CarID, e.Available, e.Requested)
}

// PlanCreate plans the deduction for a new sale of quantity units of car.
// Quantity positivity is a precondition enforced at the request boundary.
func PlanCreate(car *model.Car, quantity int) ([]Delta, error) {
	if car.Stock < quantity {
		return nil, &InsufficientStockError{CarID: car.ID, Available: car.Stock, Requested: quantity}
	}
	return []Delta{{CarID: car.ID, Quantity: -quantity}}, nil
}

// PlanUpdate plans the adjustments for changing an existing sale from
// (oldCar, oldQty) to (newCar, newQty).
//
// The same-car and different-car branches are mutually exclusive and
// exhaustive. For different cars the new car's feasibility is checked against
// its own persisted stock — the restoration to the old car happens on a
// different row and does not free up units on the new one.
func PlanUpdate(oldCar *model.Car, oldQty int, newCar *model.Car, newQty int) ([]Delta, error) {
	if oldCar.ID == newCar.ID {
		diff := newQty - oldQty
		if diff == 0 {
			// True no-op: stock untouched, nothing to re-validate.
			return nil, nil
		}
		if diff > 0 && newCar.Stock < diff {
			return nil, &InsufficientStockError{CarID: newCar.ID, Available: newCar.Stock, Requested: diff}
		}
		return []Delta{{CarID: newCar.ID, Quantity: -diff}}, nil
	}

	if newCar.Stock < newQty {
		return nil, &InsufficientStockError{CarID: newCar.ID, Available: newCar.Stock, Requested: newQty}
	}
	// Restore first, then deduct — the order movements are recorded in.
	return []Delta{
		{CarID: oldCar.ID, Quantity: oldQty},
		{CarID: newCar.ID, Quantity: -newQty},
	}, nil
}

// PlanDelete plans the restoration for removing a sale.
// Returning stock is never blocked.
func PlanDelete(car *model.Car, quantity int) []Delta {
	return []Delta{{CarID: car.ID, Quantity: quantity}}
}
