package locations

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
	"github.com/servanahq/servana-backend/pkg/realtime"
)

type latestStore interface {
	Latest(ctx context.Context, vendorID uuid.UUID, bookingID *uuid.UUID) (*models.VendorLocation, error)
}

// View is the tracked position snapshot. Err reflects the last fetch
// attempt only; push updates overwrite Location without touching it.
type View struct {
	Location  *LocationDTO
	IsLoading bool
	Err       error
}

// Subscriber builds tracking sessions for customer-side views.
type Subscriber struct {
	store   latestStore
	source  realtime.Source
	channel func(vendorID string) string
	logg    *logger.Logger
}

// SubscriberParams bundles the dependencies for a Subscriber.
type SubscriberParams struct {
	Store       latestStore
	Source      realtime.Source
	ChannelFunc func(vendorID string) string
	Logger      *logger.Logger
}

// NewSubscriber constructs the tracking session factory.
func NewSubscriber(params SubscriberParams) (*Subscriber, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "location store required")
	}
	if params.Source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "realtime source required")
	}
	if params.ChannelFunc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "channel func required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Subscriber{
		store:   params.Store,
		source:  params.Source,
		channel: params.ChannelFunc,
		logg:    params.Logger,
	}, nil
}

// Track fetches the newest sample for the vendor, then follows new-row
// events on the vendor's channel until the tracking is stopped. Having no
// sample yet is a legitimate state, not an error.
func (s *Subscriber) Track(ctx context.Context, vendorID uuid.UUID, bookingID *uuid.UUID) (*Tracking, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}

	tracking := &Tracking{
		updates: make(chan View, 1),
		view:    View{IsLoading: true},
	}

	// The initial fetch seeds Current() only; Updates() carries changes
	// that arrive after the caller has read the starting snapshot.
	row, err := s.store.Latest(ctx, vendorID, bookingID)
	switch {
	case err == nil:
		tracking.view = View{Location: FromModel(row)}
	case errors.Is(err, gorm.ErrRecordNotFound):
		tracking.view = View{}
	default:
		s.logg.Error(s.logg.WithVendorID(ctx, vendorID.String()), "latest location fetch failed", err)
		tracking.view = View{Err: err}
	}

	sub, err := s.source.Subscribe(ctx, s.channel(vendorID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to location channel")
	}
	tracking.sub = sub

	go tracking.consume(ctx, s.logg, vendorID, bookingID)

	return tracking, nil
}

// Tracking is one live tracking session.
type Tracking struct {
	sub     realtime.Subscription
	updates chan View

	mu        sync.Mutex
	view      View
	closeOnce sync.Once
}

// Current returns the latest snapshot.
func (t *Tracking) Current() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Updates delivers snapshots as they change; only the latest pending one
// is retained.
func (t *Tracking) Updates() <-chan View {
	return t.updates
}

// Stop tears down the subscription. Safe to call more than once.
func (t *Tracking) Stop() {
	t.closeOnce.Do(func() {
		if t.sub != nil {
			_ = t.sub.Close()
		}
	})
}

func (t *Tracking) consume(ctx context.Context, logg *logger.Logger, vendorID uuid.UUID, bookingID *uuid.UUID) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-t.sub.Messages():
			if !ok {
				return
			}
			var dto LocationDTO
			if err := json.Unmarshal(msg.Payload, &dto); err != nil {
				logg.Error(logg.WithVendorID(ctx, vendorID.String()), "decode location event", err)
				continue
			}
			if dto.VendorID != vendorID {
				continue
			}
			if bookingID != nil && (dto.BookingID == nil || *dto.BookingID != *bookingID) {
				continue
			}

			t.mu.Lock()
			// Last write wins; the fetch error flag is deliberately left
			// as-is until a fresh fetch.
			t.view.Location = &dto
			t.view.IsLoading = false
			view := t.view
			t.mu.Unlock()

			t.push(view)
		}
	}
}

func (t *Tracking) push(view View) {
	select {
	case t.updates <- view:
	default:
		select {
		case <-t.updates:
		default:
		}
		select {
		case t.updates <- view:
		default:
		}
	}
}
