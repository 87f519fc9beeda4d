package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/enums"
)

// UserRole maps an identity to its single marketplace role. At most one
// row per user; absence of a row is a legitimate state handled by the
// resolver, never a crash.
type UserRole struct {
	UserID    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Role      enums.Role `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the role mapping to its external table.
func (UserRole) TableName() string {
	return "user_roles"
}
