package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/enums"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
	"github.com/servanahq/servana-backend/pkg/metrics"
)

type roleAssigner interface {
	Assign(ctx context.Context, userID uuid.UUID, role enums.Role) error
}

// Confirmer marks an account email-confirmed. Failures during sign-up are
// logged, never surfaced.
type Confirmer interface {
	Confirm(ctx context.Context, email string) error
}

// RegisterService handles end-to-end account creation.
type RegisterService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error)
}

// RegisterServiceParams packages the dependencies for the sign-up flow.
type RegisterServiceParams struct {
	Provider     Provider
	Roles        roleAssigner
	RoleResolver roleResolver
	Confirmer    Confirmer
	Logger       *logger.Logger
	Metrics      *metrics.TrackingMetrics
}

type registerService struct {
	provider  Provider
	roles     roleAssigner
	resolver  roleResolver
	confirmer Confirmer
	logg      *logger.Logger
	metrics   *metrics.TrackingMetrics
}

// NewRegisterService builds the sign-up service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth provider required")
	}
	if params.Roles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "role assigner required")
	}
	if params.RoleResolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "role resolver required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &registerService{
		provider:  params.Provider,
		roles:     params.Roles,
		resolver:  params.RoleResolver,
		confirmer: params.Confirmer,
		logg:      params.Logger,
		metrics:   params.Metrics,
	}, nil
}

// SignUp provisions an identity and its role row, then signs the user in.
// A duplicate registration falls back to a plain sign-in with the supplied
// credentials; the operation only succeeds when that sign-in succeeds.
func (s *registerService) SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := req.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	userID, err := s.provider.SignUp(ctx, SignUpParams{
		Email:    email,
		Password: req.Password,
		FullName: req.FullName,
	})
	switch {
	case err == nil:
		if err := s.roles.Assign(ctx, userID, role); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign role")
		}
		s.confirmBestEffort(ctx, email)
		s.metrics.IncAuthEvent("sign_up")

	case errors.Is(err, ErrAlreadyRegistered):
		// Self-healing against duplicate sign-up submissions: the flow
		// succeeds only when the supplied password matches the existing
		// account.
		s.metrics.IncAuthEvent("sign_up_duplicate")

	default:
		s.metrics.IncAuthEvent("sign_up_failed")
		return nil, err
	}

	sess, err := s.provider.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	return &SessionResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Role:         s.resolver.Resolve(ctx, sess.UserID),
	}, nil
}

func (s *registerService) confirmBestEffort(ctx context.Context, email string) {
	if s.confirmer == nil {
		return
	}
	if err := s.confirmer.Confirm(ctx, email); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"email": email,
			"error": err.Error(),
		}), "auto-confirm failed, continuing sign-up")
	}
}
