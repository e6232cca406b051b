package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Car is a vehicle listing in the showroom inventory.
// Stock is mutated only through the sale engine or the explicit
// stock-adjust endpoint; both record a StockMovement row.
type Car struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Brand string    `gorm:"index;not null"`
	Model string    `gorm:"index;not null"`
	// Year of manufacture — 1886 is the first production automobile.
	Year      int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0;check:stock >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
