package roles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
)

// Repository exposes role persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a roles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserID returns the role row for the user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserRole, error) {
	var row models.UserRole
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Assign upserts the role for the user.
func (r *Repository) Assign(ctx context.Context, userID uuid.UUID, role enums.Role) error {
	row := models.UserRole{UserID: userID, Role: role}
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Assign(map[string]any{"role": role}).
		FirstOrCreate(&row).Error
}
