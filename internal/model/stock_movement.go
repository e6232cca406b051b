package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records every stock change on a car: sale lifecycle events
// and manual adjustments. Pure audit trail — stock itself lives on the Car
// row and is never reconstructed from movements.
type StockMovement struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CarID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type  string    `gorm:"not null"` // "sale" | "sale_update" | "sale_delete" | "manual_adjust"
	// Quantity is signed: positive = stock returned, negative = stock deducted.
	Quantity    int `gorm:"not null"`
	StockBefore int `gorm:"not null"`
	StockAfter  int `gorm:"not null"`
	Reason      string
	// ReferenceID is the sale id for sale-driven movements, nil for manual ones.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Car *Car `gorm:"foreignKey:CarID"`
}
