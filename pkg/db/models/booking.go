package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/enums"
)

// Booking is a scheduled job between a customer and a vendor. Live
// tracking is gated to the enroute phase of its lifecycle.
type Booking struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	VendorID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	ServiceName string              `gorm:"column:service_name;not null"`
	Status      enums.BookingStatus `gorm:"type:text;not null;default:'pending'"`
	ScheduledAt *time.Time          `gorm:"column:scheduled_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
