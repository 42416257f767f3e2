package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/repository"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

var bookingCols = []string{
	"id", "car_id", "brand", "model", "image",
	"owner_id", "user_id", "name", "phone_number", "pickup_date", "return_date",
	"price", "status", "created_at",
}

func bookingRow(rows *sqlmock.Rows, id, owner uuid.UUID, status string, createdAt time.Time) *sqlmock.Rows {
	pickup := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id.String(), uuid.NewString(), "BMW", "X5", "img",
		owner.String(), uuid.NewString(), "Bob", "+100", pickup, pickup.AddDate(0, 0, 3),
		390.0, status, createdAt)
}

func TestBookingsRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingsRepository(db)
	id := uuid.New()
	now := time.Now()

	in := models.Booking{
		Car:         models.BookingCar{ID: uuid.New()},
		OwnerID:     uuid.New(),
		UserID:      uuid.New(),
		Name:        "Bob",
		PhoneNumber: "+100",
		PickupDate:  now,
		ReturnDate:  now.AddDate(0, 0, 2),
		Price:       260,
	}

	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(in.Car.ID, in.OwnerID, in.UserID, "Bob", "+100", in.PickupDate, in.ReturnDate, 260.0, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), now))

	out, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, id, out.ID)
	require.Equal(t, models.BookingPending, out.Status)
}

func TestBookingsRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingsRepository(db)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings b JOIN cars c (.+) WHERE b.id`).
		WithArgs(id).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), id, owner, "pending", time.Now()))

	b, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, owner, b.OwnerID)
	require.Equal(t, models.BookingPending, b.Status)
	require.Equal(t, "BMW", b.Car.Brand)
}

func TestBookingsRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingsRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), id)
	require.ErrorIs(t, err, serr.ErrNotFound)
}

func TestBookingsRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingsRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs(id, "pending", "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), id, models.BookingPending, models.BookingConfirmed))

	// статус уже поменяли параллельно
	mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs(id, "pending", "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), id, models.BookingPending, models.BookingCancelled)
	require.ErrorIs(t, err, serr.ErrInvalidTransition)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingsRepository_ListByOwner_NewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingsRepository(db)
	owner := uuid.New()
	newer, older := uuid.New(), uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(bookingCols)
	bookingRow(rows, newer, owner, "confirmed", now)
	bookingRow(rows, older, owner, "pending", now.Add(-time.Hour))

	mock.ExpectQuery(`WHERE b.owner_id=\$1 ORDER BY b.created_at DESC`).
		WithArgs(owner).
		WillReturnRows(rows)

	list, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer, list[0].ID)
	require.Equal(t, models.BookingConfirmed, list[0].Status)
}

func TestBookingsRepository_ListByUser_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewBookingsRepository(db)

	mock.ExpectQuery(`WHERE b.user_id`).WillReturnError(sql.ErrConnDone)

	_, err = repo.ListByUser(context.Background(), uuid.New())
	require.ErrorIs(t, err, serr.ErrInternal)
}
