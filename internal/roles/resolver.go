package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
	"github.com/servanahq/servana-backend/pkg/logger"
)

// Resolver maps a user to their platform role. Users without a role row
// and lookup failures both resolve to the customer default so a broken
// roles table never locks anyone out of the base experience.
type Resolver struct {
	repo roleRepository
	logg *logger.Logger
}

type roleRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserRole, error)
}

// NewResolver constructs a role resolver.
func NewResolver(repo roleRepository, logg *logger.Logger) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("role repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Resolver{repo: repo, logg: logg}, nil
}

// Resolve returns the user's role, defaulting to customer when no row
// exists or the lookup fails.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) enums.Role {
	row, err := r.repo.FindByUserID(ctx, userID)
	if err != nil {
		ctx = r.logg.WithUserID(ctx, userID.String())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logg.Warn(ctx, "no role row for user, defaulting to customer")
		} else {
			r.logg.Error(ctx, "role lookup failed, defaulting to customer", err)
		}
		return enums.RoleCustomer
	}
	if !row.Role.IsValid() {
		ctx = r.logg.WithUserID(ctx, userID.String())
		r.logg.Warn(ctx, fmt.Sprintf("unknown role %q for user, defaulting to customer", row.Role))
		return enums.RoleCustomer
	}
	return row.Role
}
