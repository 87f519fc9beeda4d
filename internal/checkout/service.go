package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

const (
	successPath = "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	cancelPath  = "/payment/cancel"
)

var minorUnits = decimal.NewFromInt(100)

// Service creates hosted payment sessions.
type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error)
}

type service struct {
	client          StripeCheckoutClient
	appURL          string
	defaultCurrency string
	logg            *logger.Logger
}

// ServiceParams bundles the dependencies for the checkout service.
type ServiceParams struct {
	Client          StripeCheckoutClient
	AppURL          string
	DefaultCurrency string
	Logger          *logger.Logger
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.AppURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "app url required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.DefaultCurrency))
	if currency == "" {
		currency = "inr"
	}
	return &service{
		client:          params.Client,
		appURL:          strings.TrimRight(params.AppURL, "/"),
		defaultCurrency: currency,
		logg:            params.Logger,
	}, nil
}

func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	serviceName := strings.TrimSpace(req.ServiceName)
	if serviceName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serviceName is required")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	unitAmount := req.Amount.Mul(minorUnits).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(serviceName),
						Description: stripe.String(productDescription(req.VendorName)),
					},
				},
			},
		},
		SuccessURL: stripe.String(s.appURL + successPath),
		CancelURL:  stripe.String(s.appURL + cancelPath),
	}
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := s.client.CreateSession(ctx, params)
	if err != nil {
		s.logg.Error(ctx, "create checkout session failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	return &CreateSessionResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

func productDescription(vendorName string) string {
	vendor := strings.TrimSpace(vendorName)
	if vendor == "" {
		return "Service booking"
	}
	return fmt.Sprintf("Service by %s", vendor)
}
