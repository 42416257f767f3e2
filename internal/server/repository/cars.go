package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// CarsRepository - машины, выставленные владельцами.
type CarsRepository struct {
	db *sql.DB
}

func NewCarsRepository(db *sql.DB) *CarsRepository {
	return &CarsRepository{db: db}
}

const carColumns = `id, owner_id, brand, model, image, year, category, seating_capacity,
	fuel_type, transmission, price_per_day, location, description, is_available, created_at`

func scanCar(row interface{ Scan(...any) error }) (models.Car, error) {
	var c models.Car
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Brand, &c.Model, &c.Image, &c.Year, &c.Category, &c.SeatingCap,
		&c.FuelType, &c.Transmission, &c.PricePerDay, &c.Location, &c.Description, &c.IsAvailable, &c.CreatedAt,
	)
	return c, err
}

func (r *CarsRepository) list(ctx context.Context, query string, args ...any) ([]models.Car, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, serr.ErrInternal
	}
	defer rows.Close()

	cars := make([]models.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, serr.ErrInternal
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, serr.ErrInternal
	}
	return cars, nil
}

// ListAvailable возвращает машины, доступные для бронирования.
func (r *CarsRepository) ListAvailable(ctx context.Context) ([]models.Car, error) {
	return r.list(ctx,
		`SELECT `+carColumns+` FROM cars WHERE is_available ORDER BY created_at DESC`)
}

// ListByOwner возвращает все машины владельца.
func (r *CarsRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Car, error) {
	return r.list(ctx,
		`SELECT `+carColumns+` FROM cars WHERE owner_id=$1 ORDER BY created_at DESC`,
		ownerID)
}

func (r *CarsRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Car, error) {
	c, err := scanCar(r.db.QueryRowContext(ctx,
		`SELECT `+carColumns+` FROM cars WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Car{}, serr.ErrNotFound
		}
		return models.Car{}, serr.ErrInternal
	}
	return c, nil
}

// Create сохраняет новую машину; id, is_available и created_at проставляет база.
func (r *CarsRepository) Create(ctx context.Context, c models.Car) (models.Car, error) {
	out, err := scanCar(r.db.QueryRowContext(ctx,
		`INSERT INTO cars (owner_id, brand, model, image, year, category, seating_capacity,
		                   fuel_type, transmission, price_per_day, location, description)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+carColumns,
		c.OwnerID, c.Brand, c.Model, c.Image, c.Year, c.Category, c.SeatingCap,
		c.FuelType, c.Transmission, c.PricePerDay, c.Location, c.Description,
	))
	if err != nil {
		return models.Car{}, serr.ErrInternal
	}
	return out, nil
}

// SetAvailability включает/выключает машину в каталоге.
func (r *CarsRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cars SET is_available=$2 WHERE id=$1`, id, available)
	if err != nil {
		return serr.ErrInternal
	}
	n, err := res.RowsAffected()
	if err != nil {
		return serr.ErrInternal
	}
	if n == 0 {
		return serr.ErrNotFound
	}
	return nil
}
