package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/api/middleware"
	"github.com/servanahq/servana-backend/api/responses"
	"github.com/servanahq/servana-backend/api/validators"
	"github.com/servanahq/servana-backend/internal/locations"
	"github.com/servanahq/servana-backend/pkg/db/models"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type bookingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type shareRequest struct {
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
}

type shareStatusResponse struct {
	Active bool `json:"active"`
}

// locationFrame is the wire shape of one tracking snapshot pushed over the
// stream socket.
type locationFrame struct {
	Location  *locations.LocationDTO `json:"location"`
	IsLoading bool                   `json:"is_loading"`
	Error     string                 `json:"error,omitempty"`
}

func frameFromView(view locations.View) locationFrame {
	frame := locationFrame{
		Location:  view.Location,
		IsLoading: view.IsLoading,
	}
	if view.Err != nil {
		frame.Error = "unable to load the vendor's location"
	}
	return frame
}

// StartLocationShare begins continuous location publishing for the
// authenticated vendor. When a booking is named it must be en route.
func StartLocationShare(pub *locations.Publisher, bookings bookingFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location publisher unavailable"))
			return
		}

		vendorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing vendor identity"))
			return
		}

		var body shareRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.BookingID != nil {
			if bookings == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository unavailable"))
				return
			}
			booking, err := bookings.FindByID(r.Context(), *body.BookingID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking"))
				return
			}
			if booking.VendorID != vendorID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another vendor"))
				return
			}
			if !booking.Status.TrackingEnabled() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "tracking is only available while the vendor is en route"))
				return
			}
		}

		if err := pub.StartSharing(r.Context(), vendorID, body.BookingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shareStatusResponse{Active: true})
	}
}

// StopLocationShare ends the calling vendor's own watch. Stopping an
// inactive share succeeds; other vendors' sessions are untouched.
func StopLocationShare(pub *locations.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location publisher unavailable"))
			return
		}

		vendorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing vendor identity"))
			return
		}

		pub.StopSharing(r.Context(), vendorID)
		responses.WriteSuccess(w, shareStatusResponse{Active: false})
	}
}

// LocationShareStatus reports whether the calling vendor has an active watch.
func LocationShareStatus(pub *locations.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location publisher unavailable"))
			return
		}

		vendorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing vendor identity"))
			return
		}

		responses.WriteSuccess(w, shareStatusResponse{Active: pub.IsActive(vendorID)})
	}
}

type reportLocationRequest struct {
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	Latitude  *float64   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64   `json:"longitude" validate:"required,min=-180,max=180"`
	Heading   *float64   `json:"heading,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Accuracy  *int       `json:"accuracy,omitempty"`
}

// ReportLocation persists a single fix for the authenticated vendor. It is
// the same write path the continuous watch uses.
func ReportLocation(repo *locations.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location repository unavailable"))
			return
		}

		vendorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing vendor identity"))
			return
		}

		var body reportLocationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := repo.Insert(r.Context(), locations.InsertLocationDTO{
			VendorID:  vendorID,
			BookingID: body.BookingID,
			Latitude:  *body.Latitude,
			Longitude: *body.Longitude,
			Heading:   body.Heading,
			Speed:     body.Speed,
			Accuracy:  body.Accuracy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert location sample"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, locations.FromModel(row))
	}
}

// LatestLocation returns the most recent stored sample for a vendor.
func LatestLocation(repo *locations.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location repository unavailable"))
			return
		}

		vendorID, err := uuid.Parse(chi.URLParam(r, "vendorId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor id"))
			return
		}

		bookingID, err := optionalBookingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := repo.Latest(r.Context(), vendorID, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no location reported yet"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest location"))
			return
		}

		responses.WriteSuccess(w, locations.FromModel(row))
	}
}

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamLocation upgrades to a websocket and pushes tracking snapshots for
// a vendor until the client disconnects.
func StreamLocation(sub *locations.Subscriber, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location subscriber unavailable"))
			return
		}

		vendorID, err := uuid.Parse(chi.URLParam(r, "vendorId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor id"))
			return
		}

		bookingID, err := optionalBookingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tracking, err := sub.Track(r.Context(), vendorID, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conn, err := streamUpgrader.Upgrade(w, r, nil)
		if err != nil {
			tracking.Stop()
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "websocket upgrade failed")
			}
			return
		}
		defer conn.Close()
		defer tracking.Stop()

		// The read pump exists only to observe the client going away.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if err := conn.WriteJSON(frameFromView(tracking.Current())); err != nil {
			return
		}

		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case view, ok := <-tracking.Updates():
				if !ok {
					return
				}
				if err := conn.WriteJSON(frameFromView(view)); err != nil {
					return
				}
			}
		}
	}
}

func optionalBookingID(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("booking_id")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking id")
	}
	return &id, nil
}
