package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
)

// Repository exposes the append-only location sample table.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a locations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one sample. Rows are never updated or deleted.
func (r *Repository) Insert(ctx context.Context, dto InsertLocationDTO) (*models.VendorLocation, error) {
	row := dto.ToModel()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Latest returns the newest sample for the vendor, optionally scoped to a
// booking. gorm.ErrRecordNotFound means no position is known yet.
func (r *Repository) Latest(ctx context.Context, vendorID uuid.UUID, bookingID *uuid.UUID) (*models.VendorLocation, error) {
	query := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC")
	if bookingID != nil {
		query = query.Where("booking_id = ?", *bookingID)
	}

	var row models.VendorLocation
	if err := query.First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
