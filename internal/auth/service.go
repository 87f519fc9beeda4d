package auth

import (
	"context"

	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
	"github.com/servanahq/servana-backend/pkg/metrics"
)

// Service defines the session operations needed by the auth controller.
type Service interface {
	SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error)
	SignOut(ctx context.Context, accessID string) error
}

type service struct {
	provider Provider
	resolver roleResolver
	logg     *logger.Logger
	metrics  *metrics.TrackingMetrics
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Provider     Provider
	RoleResolver roleResolver
	Logger       *logger.Logger
	Metrics      *metrics.TrackingMetrics
}

// NewService constructs a sign-in/sign-out service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth provider required")
	}
	if params.RoleResolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "role resolver required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		provider: params.Provider,
		resolver: params.RoleResolver,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error) {
	sess, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.metrics.IncAuthEvent("sign_in_failed")
		return nil, err
	}

	s.metrics.IncAuthEvent("sign_in")
	return &SessionResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Role:         s.resolver.Resolve(ctx, sess.UserID),
	}, nil
}

func (s *service) SignOut(ctx context.Context, accessID string) error {
	if err := s.provider.SignOut(ctx, accessID); err != nil {
		return err
	}
	s.metrics.IncAuthEvent("sign_out")
	return nil
}
