package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// BookingsRepository - бронирования машин.
//
// При чтении бронирование всегда отдаётся вместе с краткой карточкой машины.
type BookingsRepository struct {
	db *sql.DB
}

func NewBookingsRepository(db *sql.DB) *BookingsRepository {
	return &BookingsRepository{db: db}
}

const bookingSelect = `SELECT b.id, b.car_id, c.brand, c.model, c.image,
	b.owner_id, b.user_id, b.name, b.phone_number, b.pickup_date, b.return_date,
	b.price, b.status, b.created_at
	FROM bookings b
	JOIN cars c ON c.id = b.car_id`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b      models.Booking
		status string
	)
	err := row.Scan(
		&b.ID, &b.Car.ID, &b.Car.Brand, &b.Car.Model, &b.Car.Image,
		&b.OwnerID, &b.UserID, &b.Name, &b.PhoneNumber, &b.PickupDate, &b.ReturnDate,
		&b.Price, &status, &b.CreatedAt,
	)
	b.Status = models.BookingStatus(status)
	return b, err
}

func (r *BookingsRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, serr.ErrInternal
	}
	defer rows.Close()

	out := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, serr.ErrInternal
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, serr.ErrInternal
	}
	return out, nil
}

// Create сохраняет бронирование в статусе pending.
//
// Возвращает сохранённое бронирование с id и created_at из базы.
func (r *BookingsRepository) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO bookings (car_id, owner_id, user_id, name, phone_number,
		                       pickup_date, return_date, price, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING id, created_at`,
		b.Car.ID, b.OwnerID, b.UserID, b.Name, b.PhoneNumber,
		b.PickupDate, b.ReturnDate, b.Price, string(models.BookingPending),
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return models.Booking{}, serr.ErrInternal
	}
	b.Status = models.BookingPending
	return b, nil
}

func (r *BookingsRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, serr.ErrNotFound
		}
		return models.Booking{}, serr.ErrInternal
	}
	return b, nil
}

// UpdateStatus переводит бронирование из статуса from в статус to.
//
// Условие на текущий статус защищает от гонки двух владельческих запросов:
// если статус успели поменять, возвращается ErrInvalidTransition.
func (r *BookingsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status=$3 WHERE id=$1 AND status=$2`,
		id, string(from), string(to),
	)
	if err != nil {
		return serr.ErrInternal
	}
	n, err := res.RowsAffected()
	if err != nil {
		return serr.ErrInternal
	}
	if n == 0 {
		return serr.ErrInvalidTransition
	}
	return nil
}

// ListByOwner - бронирования машин владельца, новые первыми.
func (r *BookingsRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.owner_id=$1 ORDER BY b.created_at DESC`, ownerID)
}

// ListByUser - бронирования, сделанные пользователем, новые первыми.
func (r *BookingsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.user_id=$1 ORDER BY b.created_at DESC`, userID)
}
