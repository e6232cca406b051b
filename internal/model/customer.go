package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a showroom client. Fields beyond identity are never touched
// by the sale engine — it only checks existence for referential integrity.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Phone     string    `gorm:"uniqueIndex;not null"`
	Address   string
	CreatedAt time.Time
}
