package geo

import (
	"context"
	"errors"
	"time"

	"github.com/servanahq/servana-backend/pkg/config"
)

// Watch error kinds mirror the failure modes a positioning device reports.
var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
	ErrTimeout             = errors.New("geolocation timed out")
)

// Position is a single device fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Heading   *float64
	Speed     *float64
	Accuracy  *int
	Timestamp time.Time
}

// WatchOptions tune a continuous position watch.
type WatchOptions struct {
	EnableHighAccuracy bool
	// MaximumAge bounds how stale a cached fix may be.
	MaximumAge time.Duration
	// Timeout bounds the wait for each fix.
	Timeout time.Duration
}

// OptionsFromConfig maps the configured watch options.
func OptionsFromConfig(cfg config.GeoConfig) WatchOptions {
	return WatchOptions{
		EnableHighAccuracy: cfg.EnableHighAccuracy,
		MaximumAge:         cfg.MaximumAge,
		Timeout:            cfg.Timeout,
	}
}

// WatchID identifies an active watch for cancellation.
type WatchID int64

// Watcher is the positioning capability. WatchPosition streams fixes to
// onPosition and failures to onError until ClearWatch is called or the
// context ends. A watch survives individual errors; callers decide when
// to stop it.
type Watcher interface {
	WatchPosition(ctx context.Context, opts WatchOptions, onPosition func(Position), onError func(error)) (WatchID, error)
	ClearWatch(id WatchID)
}
