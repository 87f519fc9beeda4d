package locations

import (
	"time"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/db/models"
)

// InsertLocationDTO holds one device fix ready to persist.
type InsertLocationDTO struct {
	VendorID  uuid.UUID
	BookingID *uuid.UUID
	Latitude  float64
	Longitude float64
	Heading   *float64
	Speed     *float64
	Accuracy  *int
}

// LocationDTO is the transport shape of one location sample.
type LocationDTO struct {
	ID        uuid.UUID  `json:"id"`
	VendorID  uuid.UUID  `json:"vendor_id"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Heading   *float64   `json:"heading,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Accuracy  *int       `json:"accuracy,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromModel(m *models.VendorLocation) *LocationDTO {
	if m == nil {
		return nil
	}
	return &LocationDTO{
		ID:        m.ID,
		VendorID:  m.VendorID,
		BookingID: m.BookingID,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Heading:   m.Heading,
		Speed:     m.Speed,
		Accuracy:  m.Accuracy,
		CreatedAt: m.CreatedAt,
	}
}

func (d InsertLocationDTO) ToModel() *models.VendorLocation {
	return &models.VendorLocation{
		VendorID:  d.VendorID,
		BookingID: d.BookingID,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Heading:   d.Heading,
		Speed:     d.Speed,
		Accuracy:  d.Accuracy,
	}
}
