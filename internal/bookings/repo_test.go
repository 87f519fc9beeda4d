package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  service_name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  scheduled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedBooking(t *testing.T, db *gorm.DB, customerID, vendorID uuid.UUID, at time.Time) *models.Booking {
	t.Helper()
	row := models.Booking{
		ID:          uuid.New(),
		CustomerID:  customerID,
		VendorID:    vendorID,
		ServiceName: "Deep Cleaning",
		Status:      enums.BookingStatusConfirmed,
		CreatedAt:   at,
	}
	require.NoError(t, db.Create(&row).Error)
	return &row
}

func TestCreateAndFindBooking(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateBookingDTO{
		CustomerID:  uuid.New(),
		VendorID:    uuid.New(),
		ServiceName: "Plumbing Visit",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.BookingStatusPending, created.Status)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plumbing Visit", found.ServiceName)
}

func TestListByVendorNewestFirst(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	older := seedBooking(t, db, uuid.New(), vendorID, base)
	newer := seedBooking(t, db, uuid.New(), vendorID, base.Add(time.Hour))
	seedBooking(t, db, uuid.New(), uuid.New(), base.Add(2*time.Hour))

	rows, err := repo.ListByVendor(ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestListByCustomer(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	seedBooking(t, db, customerID, uuid.New(), base)
	seedBooking(t, db, uuid.New(), uuid.New(), base)

	rows, err := repo.ListByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, customerID, rows[0].CustomerID)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedBooking(t, db, uuid.New(), uuid.New(), time.Now())

	require.NoError(t, repo.UpdateStatus(ctx, row.ID, enums.BookingStatusEnroute))

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusEnroute, found.Status)
	assert.True(t, found.Status.TrackingEnabled())
}

func TestUpdateStatusMissingBooking(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateStatus(context.Background(), uuid.New(), enums.BookingStatusCompleted)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
