package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
)

// BookingDTO is the API shape of a booking.
type BookingDTO struct {
	ID          uuid.UUID           `json:"id"`
	CustomerID  uuid.UUID           `json:"customerId"`
	VendorID    uuid.UUID           `json:"vendorId"`
	ServiceName string              `json:"serviceName"`
	Status      enums.BookingStatus `json:"status"`
	ScheduledAt *time.Time          `json:"scheduledAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// CreateBookingDTO carries the fields needed to create a booking.
type CreateBookingDTO struct {
	CustomerID  uuid.UUID
	VendorID    uuid.UUID
	ServiceName string
	Status      enums.BookingStatus
	ScheduledAt *time.Time
}

// FromModel maps a persisted booking onto the API shape.
func FromModel(m *models.Booking) BookingDTO {
	return BookingDTO{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		VendorID:    m.VendorID,
		ServiceName: m.ServiceName,
		Status:      m.Status,
		ScheduledAt: m.ScheduledAt,
		CreatedAt:   m.CreatedAt,
	}
}

// ToModel maps the DTO onto a new booking model.
func (dto CreateBookingDTO) ToModel() *models.Booking {
	status := dto.Status
	if status == "" {
		status = enums.BookingStatusPending
	}
	return &models.Booking{
		CustomerID:  dto.CustomerID,
		VendorID:    dto.VendorID,
		ServiceName: dto.ServiceName,
		Status:      status,
		ScheduledAt: dto.ScheduledAt,
	}
}
