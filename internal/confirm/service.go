package confirm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	MarkEmailConfirmed(ctx context.Context, id uuid.UUID) error
}

// Service marks accounts email-confirmed by address, bypassing the mail
// round-trip. Sign-up treats it as best-effort.
type Service interface {
	Confirm(ctx context.Context, email string) error
}

type service struct {
	users userRepository
	logg  *logger.Logger
}

// ServiceParams bundles the dependencies for the confirm service.
type ServiceParams struct {
	UserRepo userRepository
	Logger   *logger.Logger
}

// NewService constructs the confirmation service.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{users: params.UserRepo, logg: params.Logger}, nil
}

func (s *service) Confirm(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no account for that email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if user.EmailConfirmed {
		return nil
	}

	if err := s.users.MarkEmailConfirmed(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark confirmed")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "account email confirmed")
	return nil
}
