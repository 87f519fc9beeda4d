package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorLocation is one timestamped device-position observation. Rows are
// append-only: never updated or deleted by this system.
type VendorLocation struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_vendor_locations_vendor_created"`
	BookingID *uuid.UUID `gorm:"type:uuid"`
	Latitude  float64    `gorm:"not null"`
	Longitude float64    `gorm:"not null"`
	Heading   *float64
	Speed     *float64
	Accuracy  *int
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_vendor_locations_vendor_created"`
}

// TableName pins the samples to their external table.
func (VendorLocation) TableName() string {
	return "vendor_locations"
}
