package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale records the purchase of Quantity units of one Car by one Customer.
// TotalPrice is frozen at Quantity x Car.Price as of the operation that last
// touched the row — it is never recomputed from the current car price.
// A Sale's existence implies its stock deduction was applied to the Car;
// delete/update reverse that deduction exactly once.
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CarID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null;check:quantity >= 1"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time

	Car      *Car      `gorm:"foreignKey:CarID"`
	Customer *Customer `gorm:"foreignKey:CustomerID"`
}
