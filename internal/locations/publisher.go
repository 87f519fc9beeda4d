package locations

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/db/models"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/geo"
	"github.com/servanahq/servana-backend/pkg/logger"
	"github.com/servanahq/servana-backend/pkg/metrics"
	"github.com/servanahq/servana-backend/pkg/realtime"
)

// Watch failure messages shown to the vendor, one per device error kind.
const (
	msgPermissionDenied    = "Location permission denied. Enable location access to share your position."
	msgPositionUnavailable = "Your position is currently unavailable. Check your device's location services."
	msgTimeout             = "Timed out waiting for a location fix. Try again in an open area."
	msgWatchFailed         = "Location sharing stopped due to a device error."
)

type sampleStore interface {
	Insert(ctx context.Context, dto InsertLocationDTO) (*models.VendorLocation, error)
}

// shareSession is one vendor's live watch.
type shareSession struct {
	watchID geo.WatchID
	cancel  context.CancelFunc
}

// Publisher runs sharing sessions: one continuous device watch per vendor
// whose fixes are appended as samples and fanned out to subscribers. Each
// vendor holds at most one active watch; vendors never touch each other's
// sessions.
type Publisher struct {
	store   sampleStore
	source  realtime.Source
	channel func(vendorID string) string
	watcher geo.Watcher
	opts    geo.WatchOptions
	logg    *logger.Logger
	metrics *metrics.TrackingMetrics

	mu       sync.Mutex
	closed   bool
	sessions map[uuid.UUID]*shareSession
}

// PublisherParams bundles the dependencies for the sharing sessions.
type PublisherParams struct {
	Store        sampleStore
	Source       realtime.Source
	ChannelFunc  func(vendorID string) string
	Watcher      geo.Watcher
	WatchOptions geo.WatchOptions
	Logger       *logger.Logger
	Metrics      *metrics.TrackingMetrics
}

// NewPublisher constructs a publisher with no active sessions.
func NewPublisher(params PublisherParams) (*Publisher, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sample store required")
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
	return &Publisher{
		store:    params.Store,
		source:   params.Source,
		channel:  params.ChannelFunc,
		watcher:  params.Watcher,
		opts:     params.WatchOptions,
		logg:     params.Logger,
		metrics:  params.Metrics,
		sessions: make(map[uuid.UUID]*shareSession),
	}, nil
}

// StartSharing begins the continuous watch for the vendor. It fails
// without state change when the vendor id is missing, no geolocation
// capability exists, or the vendor already has an active watch.
func (p *Publisher) StartSharing(ctx context.Context, vendorID uuid.UUID, bookingID *uuid.UUID) error {
	if vendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required to share location")
	}
	if p.watcher == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "geolocation is not available on this device")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return pkgerrors.New(pkgerrors.CodeInternal, "location publisher is shut down")
	}
	if _, ok := p.sessions[vendorID]; ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "location sharing is already active")
	}

	// The watch must outlive the request that started it; its lifetime is
	// owned here and released through StopSharing or Close, never through
	// the caller's context.
	watchCtx, cancel := context.WithCancel(context.Background())
	watchID, err := p.watcher.WatchPosition(watchCtx, p.opts,
		func(pos geo.Position) { p.handleFix(watchCtx, vendorID, bookingID, pos) },
		func(watchErr error) { p.handleWatchError(watchCtx, vendorID, watchErr) },
	)
	if err != nil {
		cancel()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start position watch")
	}

	p.sessions[vendorID] = &shareSession{
		watchID: watchID,
		cancel:  cancel,
	}

	p.logg.Info(p.logg.WithVendorID(ctx, vendorID.String()), "location sharing started")
	return nil
}

// StopSharing cancels the vendor's own watch. Calling it without an active
// session is a no-op; other vendors' sessions are never affected.
func (p *Publisher) StopSharing(ctx context.Context, vendorID uuid.UUID) {
	p.mu.Lock()
	sess, ok := p.sessions[vendorID]
	if ok {
		delete(p.sessions, vendorID)
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	p.release(sess)
	p.logg.Info(p.logg.WithVendorID(ctx, vendorID.String()), "location sharing stopped")
}

// IsActive reports whether the vendor has a running watch.
func (p *Publisher) IsActive(vendorID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sessions[vendorID]
	return ok
}

// Close tears down every session on owner shutdown.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	sessions := p.sessions
	p.sessions = make(map[uuid.UUID]*shareSession)
	p.mu.Unlock()

	for _, sess := range sessions {
		p.release(sess)
	}
}

func (p *Publisher) release(sess *shareSession) {
	if sess.cancel != nil {
		sess.cancel()
	}
	if p.watcher != nil {
		p.watcher.ClearWatch(sess.watchID)
	}
}

func (p *Publisher) handleFix(ctx context.Context, vendorID uuid.UUID, bookingID *uuid.UUID, pos geo.Position) {
	p.mu.Lock()
	_, ok := p.sessions[vendorID]
	p.mu.Unlock()
	if !ok {
		// Stop raced with a fix already in flight.
		return
	}

	row, err := p.store.Insert(ctx, InsertLocationDTO{
		VendorID:  vendorID,
		BookingID: bookingID,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Heading:   pos.Heading,
		Speed:     pos.Speed,
		Accuracy:  pos.Accuracy,
	})
	if err != nil {
		// A failed upload must not terminate live tracking.
		p.metrics.IncSampleFailure(vendorID.String())
		p.logg.Error(p.logg.WithVendorID(ctx, vendorID.String()), "location sample insert failed", err)
		return
	}
	p.metrics.IncSampleWritten(vendorID.String())

	start := time.Now()
	payload, err := json.Marshal(FromModel(row))
	if err != nil {
		p.logg.Error(ctx, "marshal location sample", err)
		return
	}
	if err := p.source.Publish(ctx, p.channel(vendorID.String()), payload); err != nil {
		p.logg.Error(p.logg.WithVendorID(ctx, vendorID.String()), "location publish failed", err)
		return
	}
	p.metrics.ObservePublishLatency(vendorID.String(), time.Since(start))
}

func (p *Publisher) handleWatchError(ctx context.Context, vendorID uuid.UUID, err error) {
	message, kind := watchErrorMessage(err)
	p.metrics.IncWatchError(kind)

	p.mu.Lock()
	sess, ok := p.sessions[vendorID]
	if ok {
		delete(p.sessions, vendorID)
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	p.release(sess)
	ctx = p.logg.WithVendorID(ctx, vendorID.String())
	p.logg.Error(p.logg.WithField(ctx, "user_message", message), "watch error ended location sharing", err)
}

func watchErrorMessage(err error) (message, kind string) {
	switch {
	case errors.Is(err, geo.ErrPermissionDenied):
		return msgPermissionDenied, "permission_denied"
	case errors.Is(err, geo.ErrPositionUnavailable):
		return msgPositionUnavailable, "position_unavailable"
	case errors.Is(err, geo.ErrTimeout):
		return msgTimeout, "timeout"
	default:
		return msgWatchFailed, "unknown"
	}
}
