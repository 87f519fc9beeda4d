package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/api/middleware"
	"github.com/servanahq/servana-backend/api/responses"
	"github.com/servanahq/servana-backend/api/validators"
	"github.com/servanahq/servana-backend/internal/bookings"
	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type createBookingRequest struct {
	VendorID    uuid.UUID  `json:"vendor_id" validate:"required"`
	ServiceName string     `json:"service_name" validate:"required"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateBooking records a new service booking for the authenticated customer.
func CreateBooking(repo *bookings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository unavailable"))
			return
		}

		customerID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing customer identity"))
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := repo.Create(r.Context(), bookings.CreateBookingDTO{
			CustomerID:  customerID,
			VendorID:    body.VendorID,
			ServiceName: body.ServiceName,
			ScheduledAt: body.ScheduledAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, bookings.FromModel(created))
	}
}

// ListBookings returns the caller's bookings, scoped by their role.
func ListBookings(repo *bookings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		role := enums.Role(middleware.RoleFromContext(r.Context()))

		var rows []models.Booking
		if role == enums.RoleVendor {
			rows, err = repo.ListByVendor(r.Context(), userID)
		} else {
			rows, err = repo.ListByCustomer(r.Context(), userID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bookings"))
			return
		}

		list := make([]bookings.BookingDTO, 0, len(rows))
		for i := range rows {
			list = append(list, bookings.FromModel(&rows[i]))
		}

		responses.WriteSuccess(w, list)
	}
}

// UpdateBookingStatus transitions one of the vendor's bookings.
func UpdateBookingStatus(repo *bookings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository unavailable"))
			return
		}

		vendorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing vendor identity"))
			return
		}

		bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking id"))
			return
		}

		var body updateBookingStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseBookingStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown booking status"))
			return
		}

		booking, err := repo.FindByID(r.Context(), bookingID)
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

		if err := repo.UpdateStatus(r.Context(), bookingID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking status"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}
