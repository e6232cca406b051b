package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by the services. Handlers map them to HTTP codes:
// not-found → 404, ErrBusy → 503 (retryable), conflicts → 409.
var (
	ErrCarNotFound      = errors.New("car not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrUserExists       = errors.New("username already exists")
	ErrCarHasSales      = errors.New("car has recorded sales and cannot be deleted")

	// ErrBusy marks transient row contention after retries were exhausted.
	// Callers may retry the whole request.
	ErrBusy = errors.New("resource busy, retry later")
)

// InvariantViolationError means a guarded stock write affected zero rows after
// validation had already passed under the row lock. This cannot happen with
// correct locking; when it does, the transaction aborts and the error is
// surfaced as fatal rather than masked.
type InvariantViolationError struct {
	CarID uuid.UUID
	Delta int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("stock invariant violated for car %s (delta %d)", e.CarID, e.Delta)
}

// Postgres SQLSTATE codes that indicate transient contention worth retrying.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// isRetryableTxError reports whether err is transient lock contention
// (serialization failure, deadlock, lock timeout) rather than a real failure.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	return false
}
